package cmd

import (
	"fmt"

	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign <hash>",
	Short: "Sign a 32 byte hash such as the hash of an output to spend",
	Args:  cobra.ExactArgs(1),
	RunE:  signRun,
}

func init() {
	rootCmd.AddCommand(signCmd)
}

func signRun(cmd *cobra.Command, args []string) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	hash, err := signature.HashFromHex(args[0])
	if err != nil {
		return err
	}

	sig, err := signature.Sign(hash, privateKey)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), sig)

	return nil
}
