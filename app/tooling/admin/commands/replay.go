// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wire"
)

// Replay reads framed messages from the specified file and hands each one
// to the node state in order. A missing file leaves the chain at genesis.
// It returns the number of messages processed.
func Replay(path string, st *state.State) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	return ReplayFrom(f, st)
}

// ReplayFrom hands every framed message in the stream to the node state.
func ReplayFrom(r io.Reader, st *state.State) (int, error) {
	var n int
	for {
		msg, err := wire.Receive(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, fmt.Errorf("message[%d]: %w", n, err)
		}

		if _, err := st.Handle(msg); err != nil {
			return n, fmt.Errorf("message[%d]: %s: %w", n, msg.Kind(), err)
		}

		n++
	}
}
