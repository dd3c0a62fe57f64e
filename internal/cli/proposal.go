package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/engine"
	"github.com/roach88/commune/internal/layout"
)

// ProposalOptions holds flags for the proposal subcommands.
type ProposalOptions struct {
	*RootOptions
	As          string
	ID          uint64
	Title       string
	Description string
	Amount      uint64
	End         int64
	Duration    time.Duration
	Vote        string
	Owner       string
	Nonce       int
}

// NewProposalCommand creates the proposal command group.
func NewProposalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Propose, vote on and pay out treasury proposals",
	}
	cmd.AddCommand(newProposalAddCommand(&ProposalOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newProposalVoteCommand(&ProposalOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newProposalApproveCommand(&ProposalOptions{RootOptions: rootOpts}))
	return cmd
}

func newProposalAddCommand(opts *ProposalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Propose a payout from the pool",
		Long: `Propose a payout from the pool to yourself. Voting stays open until the
end time (inclusive). Give the end either as --end (unix seconds) or as
--duration from now.

Example:
  commune proposal add --as <identity> --id 1 --title "Garden" --amount 50 --duration 72h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseKey("--as", opts.As)
			if err != nil {
				return err
			}
			end, err := opts.endTimestamp(cmd)
			if err != nil {
				return err
			}
			nonce, err := nonceFor(opts.Nonce, address.ProposalSeeds(opts.ID))
			if err != nil {
				return err
			}

			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.engine.AddProposal(s.ctx, owner, engine.AddProposalRequest{
				ID:           opts.ID,
				Title:        opts.Title,
				Description:  opts.Description,
				Amount:       opts.Amount,
				EndTimestamp: end,
				Nonce:        nonce,
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(p, proposalFields(p, engine.ProposalOpen))
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "proposing identity (base58)")
	cmd.Flags().Uint64Var(&opts.ID, "id", 0, "proposal ID")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title (up to 80 characters)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description (up to 1024 characters)")
	cmd.Flags().Uint64Var(&opts.Amount, "amount", 0, "requested payout in base units")
	cmd.Flags().Int64Var(&opts.End, "end", 0, "end of voting (unix seconds)")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 0, "voting period from now")
	cmd.Flags().IntVar(&opts.Nonce, "nonce", -1, "address nonce (default: canonical)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("amount")
	cmd.MarkFlagsMutuallyExclusive("end", "duration")
	cmd.MarkFlagsOneRequired("end", "duration")

	return cmd
}

func (opts *ProposalOptions) endTimestamp(cmd *cobra.Command) (int64, error) {
	if cmd.Flags().Changed("end") {
		return opts.End, nil
	}
	if opts.Duration <= 0 {
		return 0, NewExitError(ExitCommandError, "--duration must be positive")
	}
	return time.Now().Add(opts.Duration).Unix(), nil
}

func newProposalVoteCommand(opts *ProposalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Vote on an open proposal",
		Long: `Cast your single vote on an open proposal.

Example:
  commune proposal vote --as <identity> --id 1 --vote yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			voter, err := parseKey("--as", opts.As)
			if err != nil {
				return err
			}
			var yes bool
			switch opts.Vote {
			case "yes":
				yes = true
			case "no":
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid vote %q: must be yes or no", opts.Vote))
			}
			nonce, err := nonceFor(opts.Nonce, address.VoteSeeds(opts.ID, voter))
			if err != nil {
				return err
			}

			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.engine.VoteForProposal(s.ctx, voter, opts.ID, yes, nonce)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(p, proposalFields(p, engine.ProposalOpen))
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "voting identity (base58)")
	cmd.Flags().Uint64Var(&opts.ID, "id", 0, "proposal ID")
	cmd.Flags().StringVar(&opts.Vote, "vote", "", "yes or no")
	cmd.Flags().IntVar(&opts.Nonce, "nonce", -1, "address nonce (default: canonical)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("vote")

	return cmd
}

func newProposalApproveCommand(opts *ProposalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Pay out a proposal that passed",
		Long: `Pay out a proposal whose voting has ended with more yes than no votes.
--owner must name the proposal's owner, who receives the payout.

Example:
  commune proposal approve --as <identity> --id 1 --owner <identity>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := parseKey("--as", opts.As)
			if err != nil {
				return err
			}
			owner, err := parseKey("--owner", opts.Owner)
			if err != nil {
				return err
			}

			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.engine.ApproveProposal(s.ctx, caller, opts.ID, owner)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(p, proposalFields(p, engine.ProposalApproved))
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "calling identity (base58)")
	cmd.Flags().Uint64Var(&opts.ID, "id", 0, "proposal ID")
	cmd.Flags().StringVar(&opts.Owner, "owner", "", "the proposal's owner (base58)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("owner")

	return cmd
}

func proposalFields(p layout.Proposal, status engine.ProposalStatus) Fields {
	return Fields{
		{"proposal", p.ID},
		{"title", p.Title},
		{"description", p.Description},
		{"owner", p.Owner},
		{"amount", p.Price},
		{"created", time.Unix(p.CreatedAt, 0).UTC().Format(time.RFC3339)},
		{"ends", time.Unix(p.EndTimestamp, 0).UTC().Format(time.RFC3339)},
		{"yes", p.VoteYes},
		{"no", p.VoteNo},
		{"status", status},
	}
}
