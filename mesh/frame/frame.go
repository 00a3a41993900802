package frame

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// NetworkSize is the capacity of the network name field.
	NetworkSize = 20
	// PayloadSize is the capacity of the payload field.
	PayloadSize = 200
	// Size is the exact length of an encoded frame.
	Size = offPayload + PayloadSize
)

// Wire layout, all fields fixed width:
//
//	type(1) id(2, LE) network(20, nul padded) target(6) origin(6) length(1) payload(200)
const (
	offType    = 0
	offID      = offType + 1
	offNetwork = offID + 2
	offTarget  = offNetwork + NetworkSize
	offOrigin  = offTarget + AddressSize
	offLength  = offOrigin + AddressSize
	offPayload = offLength + 1
)

var (
	ErrFrameSize       = errors.New("frame has wrong size")
	ErrUnknownType     = errors.New("unknown message type")
	ErrPayloadTooLarge = errors.New("payload exceeds capacity")
	ErrNetworkTooLong  = errors.New("network name exceeds capacity")
)

// Frame is one protocol envelope.
type Frame struct {
	// Network name; frames of other networks are ignored.
	Network string
	Type    MessageType
	ID      uint16
	// Origin is the node that created the frame.
	Origin Address
	// Target is the final destination (or the searched address).
	Target Address

	payload [PayloadSize]byte
	length  uint8
}

// SetPayload copies data into the frame. Text payloads are passed as their bytes;
// the receiver sees exactly len(data) bytes.
func (f *Frame) SetPayload(data []byte) error {
	if len(data) > PayloadSize {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(data), PayloadSize)
	}
	f.payload = [PayloadSize]byte{}
	copy(f.payload[:], data)
	f.length = uint8(len(data))
	return nil
}

// Payload returns a copy of the payload bytes.
func (f *Frame) Payload() []byte {
	return bytes.Clone(f.payload[:f.length])
}

// Len returns the payload length.
func (f *Frame) Len() int {
	return int(f.length)
}

// Text returns the payload as nul-terminated text.
func (f *Frame) Text() string {
	data := f.payload[:f.length]
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data)
}

func (f *Frame) String() string {
	return fmt.Sprintf("%s id=%d %s->%s", f.Type, f.ID, f.Origin, f.Target)
}

// Encode serializes the frame into its fixed-size wire form.
func (f *Frame) Encode() ([]byte, error) {
	if !f.Type.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, f.Type)
	}
	if len(f.Network) > NetworkSize {
		return nil, fmt.Errorf("%w: %q", ErrNetworkTooLong, f.Network)
	}

	wire := make([]byte, Size)
	wire[offType] = byte(f.Type)
	binary.LittleEndian.PutUint16(wire[offID:], f.ID)
	copy(wire[offNetwork:offTarget], f.Network)
	copy(wire[offTarget:offOrigin], f.Target[:])
	copy(wire[offOrigin:offLength], f.Origin[:])
	wire[offLength] = f.length
	copy(wire[offPayload:], f.payload[:f.length])
	return wire, nil
}

// Decode parses a wire frame. Anything that is not exactly Size bytes is rejected.
func Decode(wire []byte) (f Frame, err error) {
	if len(wire) != Size {
		return f, fmt.Errorf("%w: %d != %d", ErrFrameSize, len(wire), Size)
	}

	f.Type = MessageType(wire[offType])
	if !f.Type.Valid() {
		return f, fmt.Errorf("%w: %d", ErrUnknownType, f.Type)
	}

	length := int(wire[offLength])
	if length > PayloadSize {
		return f, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, length, PayloadSize)
	}

	f.ID = binary.LittleEndian.Uint16(wire[offID:])
	network := wire[offNetwork:offTarget]
	if i := bytes.IndexByte(network, 0); i >= 0 {
		network = network[:i]
	}
	f.Network = string(network)
	copy(f.Target[:], wire[offTarget:offOrigin])
	copy(f.Origin[:], wire[offOrigin:offLength])
	f.length = uint8(length)
	copy(f.payload[:], wire[offPayload:offPayload+length])
	return f, nil
}
