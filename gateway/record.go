// Package gateway persists the unicasts a sink node receives from sensor nodes.
package gateway

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zhmesh/zhmesh/mesh/frame"
)

// ReadingSize is the encoded size of a Reading.
const ReadingSize = 6

var ErrShortReading = errors.New("payload too short for a reading")

// Record is one received unicast.
type Record struct {
	Sender   frame.Address
	Received time.Time
	Payload  []byte
}

// Reading is the sensor report of a node: temperature(float32 LE) battery(uint16 LE).
type Reading struct {
	Temperature float32
	Battery     uint16
}

func ParseReading(payload []byte) (r Reading, err error) {
	if len(payload) < ReadingSize {
		return r, fmt.Errorf("%w: %d bytes", ErrShortReading, len(payload))
	}
	r.Temperature = math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4]))
	r.Battery = binary.LittleEndian.Uint16(payload[4:6])
	return r, nil
}

func (r Reading) Bytes() []byte {
	buf := make([]byte, ReadingSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(r.Temperature))
	binary.LittleEndian.PutUint16(buf[4:6], r.Battery)
	return buf
}

func (r Reading) String() string {
	return fmt.Sprintf("temperature=%.2f battery=%d", r.Temperature, r.Battery)
}

// encodeRecord lays out a record as sender(6) received(8, unix nanos BE) payload.
func encodeRecord(rec Record) []byte {
	buf := make([]byte, frame.AddressSize+8+len(rec.Payload))
	copy(buf, rec.Sender[:])
	binary.BigEndian.PutUint64(buf[frame.AddressSize:], uint64(rec.Received.UnixNano()))
	copy(buf[frame.AddressSize+8:], rec.Payload)
	return buf
}

func decodeRecord(buf []byte) (rec Record, err error) {
	if len(buf) < frame.AddressSize+8 {
		return rec, fmt.Errorf("corrupted record of %d bytes", len(buf))
	}
	copy(rec.Sender[:], buf)
	rec.Received = time.Unix(0, int64(binary.BigEndian.Uint64(buf[frame.AddressSize:])))
	rec.Payload = append([]byte{}, buf[frame.AddressSize+8:]...)
	return rec, nil
}
