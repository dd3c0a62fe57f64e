package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/address"
)

// JoinOptions holds flags for the join command.
type JoinOptions struct {
	*RootOptions
	As    string
	Nonce int
}

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JoinOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join the commune",
		Long: `Join the commune by paying the membership fee into the pool.

Example:
  commune join --as <identity>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "joining identity (base58)")
	cmd.Flags().IntVar(&opts.Nonce, "nonce", -1, "address nonce (default: canonical)")
	_ = cmd.MarkFlagRequired("as")

	return cmd
}

func runJoin(opts *JoinOptions, cmd *cobra.Command) error {
	member, err := parseKey("--as", opts.As)
	if err != nil {
		return err
	}
	nonce, err := nonceFor(opts.Nonce, address.ApproverSeeds(member))
	if err != nil {
		return err
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.engine.Join(s.ctx, member, nonce); err != nil {
		return s.out.Fail(err)
	}
	approver, err := s.engine.Approver(s.ctx, member)
	if err != nil {
		return s.out.Fail(err)
	}
	return s.out.Record(map[string]interface{}{
		"member":   member,
		"approval": approver.Approval,
	}, Fields{
		{"member", member},
		{"approval", approver.Approval},
	})
}
