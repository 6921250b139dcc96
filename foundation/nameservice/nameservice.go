// Package nameservice reads a folder of wallet key files and creates a name
// service lookup for the public keys they hold.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
)

// NameService maintains a map of public keys for name lookup.
type NameService struct {
	owners map[signature.PublicKey]string
}

// New constructs a name service with the keys from the specified folder.
// The name of each key is its file name without the .ecdsa extension.
func New(root string) (*NameService, error) {
	ns := NameService{
		owners: make(map[signature.PublicKey]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := signature.LoadPrivateKey(fileName)
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		ns.owners[privateKey.PublicKey()] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified public key. Unknown keys are
// returned in hex.
func (ns *NameService) Lookup(owner signature.PublicKey) string {
	name, exists := ns.owners[owner]
	if !exists {
		return owner.String()
	}
	return name
}

// Copy returns a copy of the map of names and public keys.
func (ns *NameService) Copy() map[signature.PublicKey]string {
	cpy := make(map[signature.PublicKey]string, len(ns.owners))
	for owner, name := range ns.owners {
		cpy[owner] = name
	}
	return cpy
}
