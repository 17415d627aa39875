package network

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrMalformedMessage reports a frame that could not be decoded. Framing
// continues past it; the connection stays usable.
var ErrMalformedMessage = errors.New("malformed message")

// Decoder splits a byte stream into newline-delimited messages. Partial
// frames are retained across reads until their terminating newline
// arrives.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{scanner: bufio.NewScanner(r)}
}

// Next returns the next decoded message. A decode failure yields an error
// wrapping ErrMalformedMessage and leaves the stream readable; any other
// error means the stream is finished. Blank lines are skipped.
func (d *Decoder) Next() (*Message, error) {
	for {
		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		msg, err := FromJSON(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return msg, nil
	}
}

// Encoder serializes messages as newline-terminated frames. It is safe for
// concurrent use and every message goes out as a single framed send, never
// split across two writes.
type Encoder struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Encode marshals msg and sends it as one frame.
func (e *Encoder) Encode(msg *Message) error {
	data, err := msg.ToJSON()
	if err != nil {
		return err
	}
	return e.EncodeRaw(data)
}

// EncodeRaw sends pre-marshaled message bytes as one frame. Broadcasts use
// it to marshal once per fan-out rather than once per recipient.
func (e *Encoder) EncodeRaw(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if err := e.w.WriteByte('\n'); err != nil {
		return err
	}
	return e.w.Flush()
}
