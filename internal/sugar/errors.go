package sugar

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ErrorModel lets a program smuggle a domain error out of the event
// loop, so callers deal in plain errors instead of inspecting models.
type ErrorModel interface {
	tea.Model
	Err() error
}

func RunProgramWithErrors(model ErrorModel, options ...tea.ProgramOption) (tea.Model, error) {
	resultModel, teaErr := tea.NewProgram(model, options...).Run()

	var err error
	if errorModel, ok := resultModel.(ErrorModel); ok {
		err = errorModel.Err()
	}

	// Bubble Tea errors override custom errors
	if teaErr != nil {
		err = teaErr
	}

	return resultModel, err
}
