package cmd

import (
	"errors"
	"fmt"
	"math/bits"
	"os"

	"github.com/ardanlabs/utxochain/foundation/blockchain/database"
	"github.com/ardanlabs/utxochain/foundation/blockchain/signature"
	"github.com/ardanlabs/utxochain/foundation/blockchain/wire"
	"github.com/spf13/cobra"
)

var (
	utxosPath string
	outPath   string
	to        string
	value     uint64
	fee       uint64
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build a signed transaction from a UTXOs response",
	Long: `Send reads a framed UTXOs message, spends enough of the unmarked outputs
owned by the wallet to pay the value and the fee, returns the change to the
wallet and writes a framed SubmitTransaction message for the node.`,
	RunE: sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&utxosPath, "utxos", "u", "utxos.bin", "Path to the framed UTXOs message.")
	sendCmd.Flags().StringVarP(&outPath, "out", "o", "tx.bin", "Path to write the framed SubmitTransaction message.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Compressed public key of the receiver.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.Flags().Uint64VarP(&fee, "fee", "f", 0, "Fee to leave for the miner.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	receiver, err := signature.PublicKeyFromHex(to)
	if err != nil {
		return fmt.Errorf("receiver: %w", err)
	}

	utxos, err := readUTXOs(utxosPath)
	if err != nil {
		return err
	}

	tx, err := buildTx(privateKey, utxos, receiver, value, fee)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := wire.Send(f, &wire.SubmitTransaction{Tx: tx}); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", outPath, tx)

	return nil
}

// =============================================================================

// readUTXOs reads the framed UTXOs message a node sent in answer to
// FetchUTXOs.
func readUTXOs(path string) ([]wire.UTXO, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	msg, err := wire.Receive(f)
	if err != nil {
		return nil, err
	}

	utxos, ok := msg.(*wire.UTXOs)
	if !ok {
		return nil, fmt.Errorf("%s: expected %s message, got %s", path, wire.KindUTXOs, msg.Kind())
	}

	return utxos.Outputs, nil
}

// buildTx spends unmarked outputs owned by the key, in the order given,
// until they cover the value and the fee. Any excess is returned to the
// owner as change.
func buildTx(privateKey signature.PrivateKey, utxos []wire.UTXO, receiver signature.PublicKey, value uint64, fee uint64) (database.Tx, error) {
	need, carry := bits.Add64(value, fee, 0)
	if carry != 0 {
		return database.Tx{}, errors.New("value and fee overflow")
	}

	owner := privateKey.PublicKey()

	var inputs []database.TxInput
	var total uint64
	for _, utxo := range utxos {
		if total >= need {
			break
		}

		if utxo.Marked || utxo.Output.PubKey != owner {
			continue
		}

		in, err := database.NewTxInput(utxo.Output, privateKey)
		if err != nil {
			return database.Tx{}, err
		}

		sum, carry := bits.Add64(total, utxo.Output.Value, 0)
		if carry != 0 {
			return database.Tx{}, errors.New("input value overflows")
		}

		inputs = append(inputs, in)
		total = sum
	}

	if len(inputs) == 0 || total < need {
		return database.Tx{}, fmt.Errorf("insufficient funds: have %d, need %d", total, need)
	}

	outputs := []database.TxOutput{database.NewTxOutput(value, receiver)}
	if change := total - need; change > 0 {
		outputs = append(outputs, database.NewTxOutput(change, owner))
	}

	return database.NewTx(inputs, outputs), nil
}
