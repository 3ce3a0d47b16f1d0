package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/kysee/zkshield/utils"
	"github.com/kysee/zkshield/zk-shield/codec"
	"github.com/kysee/zkshield/zk-shield/merkle"
	"github.com/kysee/zkshield/zk-shield/prover"
	"github.com/kysee/zkshield/zk-shield/types"
	"github.com/kysee/zkshield/zk-shield/verifier"
	"github.com/kysee/zkshield/zk-shield/wallet"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (c *cli) zeroRootCmd() *cobra.Command {
	var height int
	cmd := &cobra.Command{
		Use:   "zero-root",
		Short: "Print the root of an empty commitment tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if height == 0 {
				height = c.cfg.TreeHeight
			}
			zeros, err := merkle.ZeroHashes(c.cfg.NewHasher(), height)
			if err != nil {
				return err
			}
			root := zeros[height]
			bz, err := utils.FieldBytes(root)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hasher: %s\nheight: %d\nroot:   %s\nhex:    %s\n",
				c.cfg.Hasher, height, root, hexutil.Encode(bz[:]))
			return nil
		},
	}
	cmd.Flags().IntVar(&height, "height", 0, "tree height (default from config)")
	return cmd
}

func (c *cli) packVKCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "pack-vk <verification_key.json>",
		Short: "Pack a snarkjs verifying key into the on-chain layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			vk, err := codec.ParseSnarkJSVerifyingKey(data)
			if err != nil {
				return err
			}
			packed, err := codec.PackVerifyingKey(vk)
			if err != nil {
				return err
			}
			if out == "" {
				name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				out = filepath.Join(c.cfg.VKDir, name+".bin")
			}
			if err := writeFile(out, packed); err != nil {
				return err
			}
			c.logger.Info().Str("file", out).Int("size", len(packed)).Int("nPublic", vk.NumPublic()).Msg("verifying key packed")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <vk_dir>/<name>.bin)")
	return cmd
}

func (c *cli) packProofCmd() *cobra.Command {
	var vkFile string
	cmd := &cobra.Command{
		Use:   "pack-proof <proof.json> <public.json>",
		Short: "Pack a snarkjs proof and its public signals for submission",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			proofJSON, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pubJSON, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			proof, err := codec.ParseSnarkJSProof(proofJSON)
			if err != nil {
				return err
			}
			packed, err := codec.PackProof(proof)
			if err != nil {
				return err
			}
			signals, err := codec.ParsePublicSignals(pubJSON)
			if err != nil {
				return err
			}
			pub, err := signals.Bytes()
			if err != nil {
				return err
			}

			if vkFile != "" {
				vk, err := readVerifyingKey(vkFile)
				if err != nil {
					return err
				}
				if err := verifier.VerifyPacked(vk, packed, pub); err != nil {
					return errors.Wrap(err, "local verification")
				}
				c.logger.Info().Str("vk", vkFile).Msg("proof verified")
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(codec.NewProofData(packed, pub))
		},
	}
	cmd.Flags().StringVar(&vkFile, "vk", "", "verify against this verifying key before printing")
	return cmd
}

func (c *cli) vkParityCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "vk-parity <onchain> <local>",
		Short: "Compare an on-chain verifying key with a local one byte by byte",
		Long: `Each key is a packed binary file, a 0x-prefixed hex dump of one, or a snarkjs
verification_key.json. The command fails when the keys differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			onchain, err := readVerifyingKey(args[0])
			if err != nil {
				return errors.Wrap(err, "onchain key")
			}
			local, err := readVerifyingKey(args[1])
			if err != nil {
				return errors.Wrap(err, "local key")
			}
			if _, err := verifier.ValidateVerifyingKeyBlob(onchain); err != nil {
				c.logger.Warn().Err(err).Msg("onchain key does not decode")
			}

			report := verifier.CompareVerifyingKeys(onchain, local, limit)
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			if !report.Equal() {
				return errors.New("verifying key mismatch")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", verifier.DefaultParityLimit, "number of differing offsets to list")
	return cmd
}

func (c *cli) exportVKCmd() *cobra.Command {
	var (
		height   int
		arity    int
		solidity string
	)
	cmd := &cobra.Command{
		Use:   "export-vk <circuit>",
		Short: "Run a development setup for a reference circuit and write its packed verifying key",
		Long: `The keys come from an unsafe local setup and are only fit for tests and
development networks. Circuits: deposit, transfer, transfer2, transfer4,
withdraw, partial_withdraw, consolidate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if height == 0 {
				height = c.cfg.TreeHeight
			}
			kind := types.CircuitKind(args[0])
			p, err := prover.NewGroth16Prover(kind, height, arity, prover.WithLogger(c.logger))
			if err != nil {
				return err
			}
			packed, err := p.PackedVerifyingKey()
			if err != nil {
				return err
			}
			out := filepath.Join(c.cfg.VKDir, verifier.VerifyingKeyName(kind, arity)+".bin")
			if err := writeFile(out, packed); err != nil {
				return err
			}
			c.logger.Info().Str("file", out).Int("size", len(packed)).Msg("verifying key written")

			if solidity != "" {
				f, err := os.Create(solidity)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := p.ExportSolidity(f); err != nil {
					return errors.Wrap(err, "export solidity verifier")
				}
				c.logger.Info().Str("file", solidity).Msg("solidity verifier written")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&height, "height", 0, "tree height (default from config)")
	cmd.Flags().IntVar(&arity, "arity", 0, "input count for transfer2, transfer4 and consolidate")
	cmd.Flags().StringVar(&solidity, "solidity", "", "also write a Solidity verifier to this file")
	return cmd
}

func (c *cli) planSendCmd() *cobra.Command {
	var (
		target   uint64
		maxNotes int
	)
	cmd := &cobra.Command{
		Use:   "plan-send <amount>...",
		Short: "Plan which notes pay a target amount",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-notes") {
				maxNotes = c.cfg.MaxNotes
			}
			notes, err := entriesFromAmounts(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			goal := uint256.NewInt(target)

			sel, err := wallet.SelectNotesForAmount(goal, notes, amountMint, maxNotes)
			switch {
			case errors.Is(err, types.ErrInsufficientFunds):
				fmt.Fprintf(w, "selection: %v\n", err)
			case err != nil:
				return err
			default:
				fmt.Fprintf(w, "selection: %s (total %s, change %s)\n",
					joinAmounts(sel.Selected), sel.Total.Dec(), sel.Change.Dec())
			}

			plan, err := wallet.PlanStagedSend(notes, amountMint, goal)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "staged plan: %d steps, sending %s\n", len(plan.Steps), plan.TotalToSend.Dec())
			for i, s := range plan.Steps {
				mode := "full"
				if s.Partial {
					mode = "partial"
				}
				fmt.Fprintf(w, "  %d. %s of note %s (%s)\n", i+1, s.Amount.Dec(), s.Note.Amount().Dec(), mode)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&target, "target", 0, "amount to send")
	cmd.Flags().IntVar(&maxNotes, "max-notes", 0, "most notes in one transfer (default from config)")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func (c *cli) planConsolidateCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "plan-consolidate <note-count>",
		Short: "Show the batch rounds needed to merge notes into one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("batch") {
				batch = c.cfg.ConsolidateBatch
			}
			if batch < 2 || batch > types.MaxConsolidateInputs {
				return errors.Errorf("batch must be in [2, %d], got %d", types.MaxConsolidateInputs, batch)
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return errors.Errorf("invalid note count %q", args[0])
			}
			w := cmd.OutOrStdout()
			rounds := wallet.ConsolidationRounds(n, batch)
			fmt.Fprintf(w, "notes: %d, batch: %d, rounds: %d\n", n, batch, rounds)
			for r := 1; n > 1; r++ {
				next := (n + batch - 1) / batch
				fmt.Fprintf(w, "  round %d: %d notes -> %d\n", r, n, next)
				n = next
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 0, "notes per consolidation (default from config)")
	return cmd
}

// amountMint is the token of the notes built from command-line amounts.
var amountMint = big.NewInt(0)

func entriesFromAmounts(args []string) ([]*wallet.NoteEntry, error) {
	out := make([]*wallet.NoteEntry, len(args))
	for i, a := range args {
		v, err := uint256.FromDecimal(a)
		if err != nil {
			return nil, errors.Wrapf(err, "amount %q", a)
		}
		n, err := types.NewRandomNote(v, amountMint)
		if err != nil {
			return nil, err
		}
		out[i] = &wallet.NoteEntry{Note: n, Index: uint64(i)}
	}
	return out, nil
}

func joinAmounts(es []*wallet.NoteEntry) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Amount().Dec()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// readVerifyingKey loads a packed key from a binary file, a hex dump or a
// snarkjs JSON file.
func readVerifyingKey(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		vk, err := codec.ParseSnarkJSVerifyingKey(data)
		if err != nil {
			return nil, err
		}
		return codec.PackVerifyingKey(vk)
	}
	if s := strings.TrimSpace(string(data)); strings.HasPrefix(s, "0x") {
		return hexutil.Decode(s)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
