package state

import (
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/utxochain/foundation/blockchain/wire"
)

// ErrUnexpectedMessage is returned when a node is handed a message that is
// only ever sent as a response.
var ErrUnexpectedMessage = errors.New("unexpected message")

// Handle processes a protocol request and returns the response to send
// back. A nil response means the message does not expect one.
func (s *State) Handle(msg wire.Message) (wire.Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil", ErrUnexpectedMessage)
	}

	s.evHandler("state: Handle: kind[%s]", msg.Kind())

	switch m := msg.(type) {
	case *wire.FetchUTXOs:
		return &wire.UTXOs{Outputs: s.QueryUTXOs(m.PubKey)}, nil

	case *wire.SubmitTransaction:
		return nil, s.UpsertWalletTransaction(m.Tx)

	case *wire.NewTransaction:
		return nil, s.UpsertNodeTransaction(m.Tx)

	case *wire.FetchTemplate:
		return &wire.Template{Block: s.BlockTemplate(m.PubKey)}, nil

	case *wire.ValidateTemplate:
		return &wire.TemplateValidity{Valid: s.ValidateTemplate(m.Block)}, nil

	case *wire.SubmitTemplate:
		return nil, s.ProcessProposedBlock(m.Block)

	case *wire.NewBlock:
		return nil, s.ProcessProposedBlock(m.Block)

	case *wire.DiscoverNodes:
		return &wire.NodeList{Nodes: s.knownPeers.Hosts(s.host)}, nil

	case *wire.NodeList:
		added, err := s.AddKnownHosts(m.Nodes)
		if err != nil {
			return nil, err
		}
		s.evHandler("state: Handle: NodeList: added[%d]", added)
		return nil, nil

	case *wire.AskDifference:
		return &wire.Difference{Delta: difference(s.db.Height(), m.Height)}, nil

	case *wire.FetchBlock:
		block, err := s.db.BlockByNumber(m.Index)
		if err != nil {
			return nil, err
		}
		return &wire.NewBlock{Block: block}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg.Kind())
}

// difference returns how many blocks this node is ahead of the asked
// height, clamped to the range of the wire field.
func difference(height uint64, asked uint32) int32 {
	if height > math.MaxInt64 {
		height = math.MaxInt64
	}

	delta := int64(height) - int64(asked)

	switch {
	case delta > math.MaxInt32:
		return math.MaxInt32
	case delta < math.MinInt32:
		return math.MinInt32
	}

	return int32(delta)
}
