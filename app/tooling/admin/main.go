// This program performs administrative tasks for the blockchain. It rebuilds
// the ledger from the genesis file and a file of framed blocks and reports
// on the unspent outputs.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/utxochain/app/tooling/admin/commands"
	"github.com/ardanlabs/utxochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/utxochain/foundation/blockchain/state"
	"github.com/ardanlabs/utxochain/foundation/logger"
	"github.com/ardanlabs/utxochain/foundation/nameservice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Args    conf.Args
		Genesis struct {
			Path string `conf:"default:zblock/genesis.json"`
		}
		Chain struct {
			Path string `conf:"default:zblock/blocks.bin"`
		}
		NameService struct {
			Folder string `conf:"default:zblock/accounts/"`
		}
		Out struct {
			Path string `conf:"help:file to write a framed response to"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "usage: admin [bals [pubkey] | utxos <pubkey>]",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Name Service Support

	ns, err := nameservice.New(cfg.NameService.Folder)
	if err != nil {
		return fmt.Errorf("unable to load account name service: %w", err)
	}

	// =========================================================================
	// Blockchain Support

	gen, err := genesis.Load(cfg.Genesis.Path)
	if err != nil {
		return fmt.Errorf("unable to load genesis: %w", err)
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		EvHandler: state.EventHandler(logger.EventHandler(log, uuid.NewString())),
	})
	if err != nil {
		return fmt.Errorf("unable to construct state: %w", err)
	}

	n, err := commands.Replay(cfg.Chain.Path, st)
	if err != nil {
		return fmt.Errorf("replaying chain: %w", err)
	}
	log.Infow("startup", "status", "chain replayed", "messages", n, "height", st.RetrieveHeight())

	return processCommands(cfg.Args, st, ns, cfg.Out.Path)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, st *state.State, ns *nameservice.NameService, outPath string) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(os.Stdout, args.Num(1), st, ns); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}
	case "utxos":
		if err := commands.UTXOs(os.Stdout, args.Num(1), outPath, st); err != nil {
			return fmt.Errorf("getting utxos: %w", err)
		}
	default:
		return fmt.Errorf("unknown command %q", args.Num(0))
	}

	return nil
}
