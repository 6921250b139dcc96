package database

import (
	"errors"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// Set of error kinds reported when a block or transaction is rejected.
// Details are wrapped around these values so callers can match the kind
// with errors.Is.
var (
	ErrInvalidTransaction       = errors.New("invalid transaction")
	ErrInvalidBlock             = errors.New("invalid block")
	ErrInvalidBlockHeader       = errors.New("invalid block header")
	ErrInvalidTransactionInput  = errors.New("invalid transaction input")
	ErrInvalidTransactionOutput = errors.New("invalid transaction output")
	ErrInvalidMerkleRoot        = errors.New("invalid merkle root")
)

// The cryptographic error kinds are owned by the signature package.
var (
	ErrInvalidHash       = signature.ErrInvalidHash
	ErrInvalidSignature  = signature.ErrInvalidSignature
	ErrInvalidPublicKey  = signature.ErrInvalidPublicKey
	ErrInvalidPrivateKey = signature.ErrInvalidPrivateKey
)

// ErrNotFound is returned when a block is requested that does not exist.
var ErrNotFound = errors.New("not found")
