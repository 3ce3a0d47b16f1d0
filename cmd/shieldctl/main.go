package main

import (
	"fmt"
	"os"

	"github.com/kysee/zkshield/utils"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type cli struct {
	configPath string
	cfg        *Config
	logger     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "shieldctl",
		Short: "Shielded pool client tools",
		Long: `shieldctl packs Groth16 proofs and verifying keys into the on-chain layout,
checks verifying key parity, and plans note selection and consolidation.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = utils.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "shieldctl.yaml", "config file, created with defaults when missing")

	root.AddCommand(
		c.zeroRootCmd(),
		c.packVKCmd(),
		c.packProofCmd(),
		c.vkParityCmd(),
		c.exportVKCmd(),
		c.planSendCmd(),
		c.planConsolidateCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
