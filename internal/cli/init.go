package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/engine"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	As         string
	Nonce      int
	JoinFee    uint64
	TaxPercent uint64
	UnitScale  uint64
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the commune",
		Long: `Create the commune record and its pool.

Genesis parameters come from the config file's genesis section or the
COMMUNE_JOIN_FEE, COMMUNE_TAX_PERCENT and COMMUNE_UNIT_SCALE variables;
flags override both. The commune can be created only once.

Examples:
  commune init --as <identity>
  commune init --as <identity> --join-fee 10 --tax 3 --unit-scale 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "paying identity (base58)")
	cmd.Flags().IntVar(&opts.Nonce, "nonce", -1, "address nonce (default: canonical)")
	cmd.Flags().Uint64Var(&opts.JoinFee, "join-fee", 0, "membership fee in base units")
	cmd.Flags().Uint64Var(&opts.TaxPercent, "tax", 0, "listing tax percent (0-100)")
	cmd.Flags().Uint64Var(&opts.UnitScale, "unit-scale", 0, "base units per price unit")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	payer, err := parseKey("--as", opts.As)
	if err != nil {
		return err
	}
	nonce, err := nonceFor(opts.Nonce, address.CommuneSeeds())
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	p := s.cfg.Genesis
	flags := cmd.Flags()
	if flags.Changed("join-fee") {
		p.JoinFee = opts.JoinFee
	}
	if flags.Changed("tax") {
		p.TaxPercent = opts.TaxPercent
	}
	if flags.Changed("unit-scale") {
		p.UnitScale = opts.UnitScale
	}

	if err := s.engine.Initialize(s.ctx, payer, nonce, p); err != nil {
		return s.out.Fail(err)
	}

	addr, _, err := engine.CommuneAddress()
	if err != nil {
		return s.out.Fail(err)
	}
	return s.out.Record(map[string]interface{}{
		"commune":     addr,
		"join_fee":    p.JoinFee,
		"tax_percent": p.TaxPercent,
		"unit_scale":  p.UnitScale,
	}, Fields{
		{"commune", addr},
		{"join fee", p.JoinFee},
		{"tax", p.TaxPercent},
		{"unit scale", p.UnitScale},
	})
}
