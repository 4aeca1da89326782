// Command engine is the thin CLI driver for the asset execution core: it
// loads a manifest of instructions, runs them against a file-backed
// substate store, and prints the resulting transaction receipt as JSON.
// Grounded on cmd/synnergy/main.go's cobra.Command tree shape (root command,
// one subcommand per verb, flags read via cmd.Flags()); this is the
// CLI/simulator front end spec.md §1 keeps deliberately thin.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/synnergy/assetengine/engine/config"
	"github.com/synnergy/assetengine/engine/gas"
	"github.com/synnergy/assetengine/engine/process"
	"github.com/synnergy/assetengine/engine/receipt"
	"github.com/synnergy/assetengine/engine/track"
	"github.com/synnergy/assetengine/engine/types"
	"github.com/synnergy/assetengine/engine/vm"
)

func main() {
	rootCmd := &cobra.Command{Use: "engine"}
	rootCmd.AddCommand(runCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [manifest.json]",
		Short: "execute a transaction manifest against a substate store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			gasLimit, _ := cmd.Flags().GetUint64("gas-limit")

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			applyLogLevel(cfg.Logging.Level)
			if gasLimit == 0 {
				gasLimit = cfg.Gas.LimitPerTransaction
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			txHash, signers, instrs, err := parseManifest(data)
			if err != nil {
				return err
			}

			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			r := run(store, cfg, txHash, signers, instrs, gasLimit)
			out, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if fs, ok := store.(*track.FileStore); ok && r.Outcome == receipt.OutcomeSuccess {
				if err := fs.Flush(); err != nil {
					return fmt.Errorf("flush store: %w", err)
				}
			}
			if r.Outcome != receipt.OutcomeSuccess {
				return fmt.Errorf("transaction aborted: %s", r.Error)
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "path to a YAML engine config file")
	cmd.Flags().Uint64("gas-limit", 0, "enable gas metering with this limit (0 = use the config's gas limit; unmetered if that is 0 too)")
	return cmd
}

func openStore(cfg config.Config) (track.SubstateStore, error) {
	if cfg.Store.Path == "" {
		return track.NewMemoryStore(), nil
	}
	return track.OpenFileStore(cfg.Store.Path)
}

// run executes one transaction to completion, converting any abort into a
// failure receipt rather than a process exit — spec.md §7: "there is no
// in-engine error recovery; Track is discarded on any non-Ok outcome", but
// the CLI still owes the caller a receipt either way.
func run(store track.SubstateStore, cfg config.Config, txHash types.Hash, signers []types.SignerKey,
	instrs []process.Instruction, gasLimit uint64) *receipt.TransactionReceipt {

	start := time.Now()
	t := track.NewWithCacheSize(store, txHash, signers, cfg.CodeCache.Size)

	opts := []process.Option{}
	if gasLimit > 0 {
		opts = append(opts, process.WithGasMeter(gas.NewLimitedMeter(gasLimit)))
	}
	p := process.New(t, vm.NewInterpretedVM(), opts...)

	results, err := p.Run(instrs)
	if err != nil {
		return receipt.FromFailure(t, err, time.Since(start))
	}
	t.Commit()
	return receipt.FromSuccess(t, results, time.Since(start))
}

func applyLogLevel(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
