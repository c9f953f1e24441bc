package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ntpstep/ntpstep/internal/clock"
	"github.com/ntpstep/ntpstep/internal/sugar"
	"github.com/ntpstep/ntpstep/internal/ui"
	"github.com/ntpstep/ntpstep/pkg/ntpstep"
)

const (
	padding  = 10
	maxWidth = 80
)

func runSyncInteractive(ctx context.Context, system *ntpstep.System) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	system.Progress = make(chan ntpstep.Attempt, 8)

	m := syncCommandModel{system: system, ctx: ctx, cancel: cancel}
	m.resetProgress()

	_, err := sugar.RunProgramWithErrors(m)
	return err
}

type syncCommandModel struct {
	progress progress.Model
	system   *ntpstep.System
	ctx      context.Context
	cancel   context.CancelFunc

	attempt    ntpstep.Attempt
	percentage float64
	result     *ntpstep.SyncResult
	outcome    *clock.Outcome
	err        error
}

type syncDoneMessage struct {
	result  *ntpstep.SyncResult
	outcome *clock.Outcome
}

type syncErrorMessage struct {
	result *ntpstep.SyncResult
	err    error
}

type attemptMessage ntpstep.Attempt

func syncCommand(ctx context.Context, system *ntpstep.System) tea.Cmd {
	return func() tea.Msg {
		result, outcome, err := system.Sync(ctx)
		if err != nil {
			return syncErrorMessage{result: result, err: err}
		}
		return syncDoneMessage{result: result, outcome: outcome}
	}
}

func attemptListenCommand(m syncCommandModel) tea.Cmd {
	return func() tea.Msg {
		return attemptMessage(<-m.system.Progress)
	}
}

func (m *syncCommandModel) resetProgress() {
	m.progress = progress.New(progress.WithScaledGradient("#68b1b1", "#6ea4ff"))
}

func (m syncCommandModel) Init() tea.Cmd {
	return tea.Batch(syncCommand(m.ctx, m.system), attemptListenCommand(m))
}

func (m syncCommandModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancel()
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil
	case attemptMessage:
		m.attempt = ntpstep.Attempt(msg)
		m.percentage = float64(m.attempt.Index) / float64(m.attempt.Total)
		return m, attemptListenCommand(m)
	case syncDoneMessage:
		m.result, m.outcome = msg.result, msg.outcome
		m.percentage = 1
		return m, tea.Quit
	case syncErrorMessage:
		m.result, m.err = msg.result, msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m syncCommandModel) View() (s string) {
	if m.err != nil {
		// a failed clock step still printed a usable measurement
		if m.result != nil {
			s += formatResult(m.result, m.outcome)
		}
		return
	}

	if m.result == nil {
		s += ui.TitleStyle("ntpstep") + "\n\n"
		if m.attempt.Total > 0 {
			s += fmt.Sprintf("querying %s (%d of %d)\n\n",
				m.attempt.Server, m.attempt.Index+1, m.attempt.Total)
		}
		s += m.progress.ViewAs(m.percentage) + "\n\n"
		s += ui.HelpStyle("q: exit\n")
	} else {
		s += formatResult(m.result, m.outcome)
	}
	return
}

func (m syncCommandModel) Err() error {
	return m.err
}
