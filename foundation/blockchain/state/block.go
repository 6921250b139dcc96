package state

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// BlockTemplate constructs the next block for a miner to solve. It links to
// the latest block, declares the required target and carries the mempool
// transactions paying the best fee. The nonce is left for the miner.
func (s *State) BlockTemplate(miner signature.PublicKey) database.Block {
	latest, _ := s.db.LatestBlock()

	// The timestamp must move forward even when the clock has not.
	timeStamp := uint64(s.now().UTC().Unix())
	if timeStamp <= latest.Header.TimeStamp {
		timeStamp = latest.Header.TimeStamp + 1
	}

	trans := s.mempool.PickBest(int(s.genesis.TransPerBlock))

	block := database.NewBlock(latest.Hash(), timeStamp, s.db.Target(), trans)

	s.evHandler("state: BlockTemplate: miner[%s]: prevBlk[%s]: numTrans[%d]", miner, block.Header.PrevBlockHash, len(trans))

	return block
}

// ValidateTemplate reports whether the block would be accepted as the next
// block once its proof of work is solved.
func (s *State) ValidateTemplate(block database.Block) bool {
	if err := s.db.ValidateTemplate(block); err != nil {
		s.evHandler("state: ValidateTemplate: INVALID: blk[%s]: %s", block.Hash(), err)
		return false
	}

	return true
}

// ProcessProposedBlock takes a block received from a peer or a miner,
// validates it and if that passes, adds the block to the local blockchain
// and removes the transactions it made stale from the mempool.
func (s *State) ProcessProposedBlock(block database.Block) error {
	s.evHandler("state: ProcessProposedBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.Header.PrevBlockHash, block.Hash(), len(block.Trans))
	defer s.evHandler("state: ProcessProposedBlock: completed: newBlk[%s]", block.Hash())

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.AcceptBlock(block); err != nil {
		return err
	}

	for _, tx := range block.Trans {
		s.mempool.Delete(tx.Hash())
	}

	pruned := s.mempool.Prune(s.db)
	s.evHandler("state: ProcessProposedBlock: mempool: pruned[%d]: remaining[%d]", pruned, s.mempool.Count())

	// Send an event about this new block.
	s.blockEvent(block)

	return nil
}

// =============================================================================

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockHeaderJSON, err := json.Marshal(block.Header)
	if err != nil {
		blockHeaderJSON = fmt.Appendf(nil, "%q", err.Error())
	}

	blockTransJSON, err := json.Marshal(block.Trans)
	if err != nil {
		blockTransJSON = fmt.Appendf(nil, "%q", err.Error())
	}

	s.evHandler(`viewer: block: {"hash":%q,"header":%s,"trans":%s}`, block.Hash(), string(blockHeaderJSON), string(blockTransJSON))
}
