package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// lengthSize is the number of bytes in the big endian length prefix of
// a frame.
const lengthSize = 8

// MaxFrameSize is the largest encoded message a frame may carry.
const MaxFrameSize = 32 << 20

// Set of framing errors. These are protocol errors reported before any
// message reaches the ledger.
var (
	ErrShortRead     = errors.New("wire: short read")
	ErrFrameTooLarge = errors.New("wire: frame too large")
)

// Send encodes the message and writes it to the stream as one frame.
func Send(w io.Writer, msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}

	return WriteFrame(w, data)
}

// Receive reads one frame from the stream and decodes the message it
// carries. It returns io.EOF only when the stream ends cleanly before a new
// frame starts.
func Receive(r io.Reader) (Message, error) {
	data, err := ReadFrame(r)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// WriteFrame writes the length of the data as an 8 byte big endian value
// followed by the data itself.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	var length [lengthSize]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(data)))

	if _, err := w.Write(length[:]); err != nil {
		return fmt.Errorf("wire: write length: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("wire: write payload: %w", err)
	}

	return nil
}

// ReadFrame reads exactly the length prefix and then exactly that many
// bytes from the stream.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length [lengthSize]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: length: %w", ErrShortRead, err)
	}

	size := binary.BigEndian.Uint64(length[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrShortRead, err)
	}

	return data, nil
}
