package transport

import (
	"errors"
	"fmt"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

// HubKind tags a message exchanged with an air hub.
type HubKind byte

const (
	// HubData carries a frame. Towards the hub Addr is the destination,
	// from the hub it is the transmitting neighbor.
	HubData HubKind = 0x01
	// HubStatus reports the link-level result for a destination; Body is [ok].
	HubStatus HubKind = 0x02
	// HubChannel announces the radio channel of the sender; Body is [channel].
	HubChannel HubKind = 0x03
)

const hubHeaderSize = 1 + frame.AddressSize

var ErrHubMessage = errors.New("malformed hub message")

// HubMessage is the envelope of the hub websocket protocol:
//
//	kind(1) addr(6) body(...)
type HubMessage struct {
	Kind HubKind
	Addr frame.Address
	Body []byte
}

func (m HubMessage) Encode() []byte {
	buf := make([]byte, hubHeaderSize+len(m.Body))
	buf[0] = byte(m.Kind)
	copy(buf[1:hubHeaderSize], m.Addr[:])
	copy(buf[hubHeaderSize:], m.Body)
	return buf
}

func DecodeHubMessage(buf []byte) (m HubMessage, err error) {
	if len(buf) < hubHeaderSize {
		return m, fmt.Errorf("%w: %d bytes", ErrHubMessage, len(buf))
	}
	m.Kind = HubKind(buf[0])
	copy(m.Addr[:], buf[1:hubHeaderSize])
	m.Body = buf[hubHeaderSize:]

	switch m.Kind {
	case HubData:
	case HubStatus, HubChannel:
		if len(m.Body) != 1 {
			return m, fmt.Errorf("%w: kind %d with %d byte body", ErrHubMessage, m.Kind, len(m.Body))
		}
	default:
		return m, fmt.Errorf("%w: unknown kind %d", ErrHubMessage, m.Kind)
	}
	return m, nil
}

// StatusMessage builds a HubStatus message.
func StatusMessage(dst frame.Address, ok bool) HubMessage {
	body := []byte{0}
	if ok {
		body[0] = 1
	}
	return HubMessage{Kind: HubStatus, Addr: dst, Body: body}
}
