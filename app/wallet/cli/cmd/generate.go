package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate new key pair",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	privateKey, err := signature.GenerateKey()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(accountPath, 0700); err != nil {
		return err
	}

	path := getPrivateKeyPath()
	if err := signature.SavePrivateKey(path, privateKey); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, privateKey.PublicKey())

	return nil
}
