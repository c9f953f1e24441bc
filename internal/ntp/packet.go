package ntp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

type Packet struct {
	Leap    byte /* leap indicator */
	Version byte /* version number */
	Mode    Mode /* mode */
	NtpFieldsEncoded
}

type NtpFieldsEncoded struct {
	Stratum   byte             /* stratum */
	Poll      int8             /* poll interval */
	Precision int8             /* precision */
	Rootdelay ShortEncoded     /* root delay */
	Rootdisp  ShortEncoded     /* root dispersion */
	Refid     ShortEncoded     /* reference ID */
	Reftime   TimestampEncoded /* reference time */
	Org       TimestampEncoded /* origin timestamp */
	Rec       TimestampEncoded /* receive timestamp */
	Xmt       TimestampEncoded /* transmit timestamp */
}

var ErrShortPacket = errors.New("packet too short")

// NewClientPacket builds a mode 3 request. Every field besides the first
// byte is zero, which is all a stateless client needs to send.
func NewClientPacket(version byte) Packet {
	return Packet{
		Leap:    0,
		Version: version,
		Mode:    CLIENT,
	}
}

func (packet Packet) Encode() []byte {
	firstByte := (packet.Leap << 6) | (packet.Version << 3) | byte(packet.Mode)

	var buffer bytes.Buffer
	binary.Write(&buffer, binary.BigEndian, firstByte)
	binary.Write(&buffer, binary.BigEndian, &packet.NtpFieldsEncoded)
	return buffer.Bytes()
}

// DecodePacket reads the 48-byte header. Datagrams may carry extension
// fields or a MAC past the header; those bytes are left alone.
func DecodePacket(encoded []byte) (*Packet, error) {
	if len(encoded) < PacketSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(encoded))
	}

	reader := bytes.NewReader(encoded)
	firstByte, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	leap := firstByte >> 6
	version := (firstByte >> 3) & 0b111
	mode := firstByte & 0b111

	fieldsEncoded := NtpFieldsEncoded{}
	if err := binary.Read(reader, binary.BigEndian, &fieldsEncoded); err != nil {
		return nil, err
	}

	return &Packet{
		Leap:             leap,
		Version:          version,
		Mode:             Mode(mode),
		NtpFieldsEncoded: fieldsEncoded,
	}, nil
}

// RefidString renders the reference ID the way ntpq does: four ASCII
// characters at stratum 0 and 1, a dotted quad above that.
func RefidString(stratum byte, refid ShortEncoded) string {
	if stratum <= 1 {
		chars := make([]byte, 0, 4)
		for shift := 24; shift >= 0; shift -= 8 {
			if c := byte(refid >> shift); c != 0 {
				chars = append(chars, c)
			}
		}
		return string(chars)
	}
	return fmt.Sprintf("%d.%d.%d.%d",
		byte(refid>>24), byte(refid>>16), byte(refid>>8), byte(refid))
}
