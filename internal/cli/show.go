package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/engine"
)

// NewShowCommand creates the show command group.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show commune records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "commune",
		Short:         "Show the commune and its pool",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session) error {
				c, err := s.engine.Commune(s.ctx)
				if err != nil {
					return err
				}
				addr, _, err := engine.CommuneAddress()
				if err != nil {
					return err
				}
				pool, err := s.engine.Balance(s.ctx, addr)
				if err != nil {
					return err
				}
				return s.out.Record(map[string]interface{}{
					"address": addr,
					"commune": c,
					"pool":    pool,
				}, Fields{
					{"address", addr},
					{"join fee", c.Fee},
					{"tax", c.Tax},
					{"unit scale", c.UnitScale},
					{"items listed", c.ItemCount},
					{"proposals", c.TotalProposalCount},
					{"pool", pool},
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "approver <identity>",
		Short:         "Show an identity's membership",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := parseKey("identity", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				a, err := s.engine.Approver(s.ctx, member)
				if err != nil {
					return err
				}
				return s.out.Record(a, Fields{
					{"member", member},
					{"approval", a.Approval},
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "item <id>",
		Short:         "Show a marketplace item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item id", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				it, err := s.engine.Item(s.ctx, id)
				if err != nil {
					return err
				}
				return s.out.Record(it, itemFields(it))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "proposal <id>",
		Short:         "Show a proposal and its current status",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("proposal id", args[0])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				p, err := s.engine.Proposal(s.ctx, id)
				if err != nil {
					return err
				}
				status, err := s.engine.ProposalStatus(s.ctx, id)
				if err != nil {
					return err
				}
				return s.out.Record(map[string]interface{}{
					"proposal": p,
					"status":   status,
				}, proposalFields(p, status))
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:           "vote <proposal-id> <voter>",
		Short:         "Show a cast vote",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("proposal id", args[0])
			if err != nil {
				return err
			}
			voter, err := parseKey("voter", args[1])
			if err != nil {
				return err
			}
			return withSession(rootOpts, cmd, func(s *session) error {
				v, err := s.engine.Vote(s.ctx, id, voter)
				if err != nil {
					return err
				}
				choice := "no"
				if v.Vote {
					choice = "yes"
				}
				return s.out.Record(v, Fields{
					{"proposal", v.ProposalID},
					{"voter", v.Voter},
					{"vote", choice},
					{"cast", time.Unix(v.CreatedAt, 0).UTC().Format(time.RFC3339)},
				})
			})
		},
	})

	return cmd
}

// withSession opens a session, runs fn and reports its error.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return s.out.Fail(err)
	}
	return nil
}
