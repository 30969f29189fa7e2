package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxFrameSize bounds a single frame body.
const DefaultMaxFrameSize = 1 << 20

const headerSize = 4

var (
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")
	ErrMalformed     = errors.New("malformed message")
)

// Decoder reads length-prefixed JSON messages from a stream.
type Decoder struct {
	r   io.Reader
	max uint32
	hdr [headerSize]byte
}

// NewDecoder returns a decoder that rejects frames larger than max bytes.
// A non-positive max selects DefaultMaxFrameSize.
func NewDecoder(r io.Reader, max int) *Decoder {
	if max <= 0 {
		max = DefaultMaxFrameSize
	}
	return &Decoder{r: r, max: uint32(max)}
}

// Decode reads the next message. A stream that ends cleanly between frames
// returns io.EOF; one that ends inside a frame returns io.ErrUnexpectedEOF.
func (d *Decoder) Decode() (*Message, error) {
	if _, err := io.ReadFull(d.r, d.hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(d.hdr[:])
	if n > d.max {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, d.max)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(d.r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &msg, nil
}

// Encoder writes length-prefixed JSON messages to a stream.
type Encoder struct {
	w   io.Writer
	max int
}

func NewEncoder(w io.Writer, max int) *Encoder {
	if max <= 0 {
		max = DefaultMaxFrameSize
	}
	return &Encoder{w: w, max: max}
}

// Encode writes msg as one frame with a single Write call.
func (e *Encoder) Encode(msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if len(body) > e.max {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(body), e.max)
	}

	frame := make([]byte, headerSize+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[headerSize:], body)
	_, err = e.w.Write(frame)
	return err
}
