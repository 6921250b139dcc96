// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/difficulty"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/validate"
	"github.com/google/uuid"
)

// Allocation represents value minted to an owner in the genesis block.
type Allocation struct {
	PublicKey signature.PublicKey `json:"public_key" validate:"required"`
	Value     uint64              `json:"value" validate:"gt=0"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date             time.Time    `json:"date" validate:"required"`
	TransPerBlock    uint16       `json:"trans_per_block" validate:"required"` // The maximum number of transactions that can be in a block template.
	Difficulty       uint16       `json:"difficulty" validate:"lte=255"`       // Number of leading zero bits the first blocks must solve.
	RetargetInterval uint64       `json:"retarget_interval"`                   // Number of blocks between target adjustments, zero disables them.
	BlockTimeSecs    uint64       `json:"block_time_secs"`                     // The ideal number of seconds between blocks.
	Allocations      []Allocation `json:"allocations" validate:"required,min=1,dive"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	return Parse(content)
}

// Parse decodes and validates the genesis document.
func Parse(content []byte) (Genesis, error) {
	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis: %w", err)
	}

	if err := validate.Check(genesis); err != nil {
		return Genesis{}, fmt.Errorf("validating genesis: %w", err)
	}

	return genesis, nil
}

// =============================================================================

// DifficultyConfig returns the retarget schedule declared by the genesis file.
func (g Genesis) DifficultyConfig() difficulty.Config {
	cfg := difficulty.DefaultConfig()
	cfg.Initial.Rsh(cfg.Initial, uint(g.Difficulty))
	cfg.Interval = g.RetargetInterval

	if g.BlockTimeSecs > 0 {
		cfg.IdealBlockTime = time.Duration(g.BlockTimeSecs) * time.Second
	}

	return cfg
}

// Block constructs the genesis block minting the allocations. The unique id
// of every output is derived from the genesis file so every node constructs
// the same block.
func (g Genesis) Block() database.Block {
	outputs := make([]database.TxOutput, len(g.Allocations))
	for i, alloc := range g.Allocations {
		seed := fmt.Sprintf("%d:%d:%s:%d", g.Date.Unix(), i, alloc.PublicKey, alloc.Value)

		outputs[i] = database.TxOutput{
			Value:    alloc.Value,
			UniqueID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)),
			PubKey:   alloc.PublicKey,
		}
	}

	trans := []database.Tx{database.NewTx(nil, outputs)}

	return database.NewBlock(signature.ZeroHash, uint64(g.Date.UTC().Unix()), difficulty.Max(), trans)
}
