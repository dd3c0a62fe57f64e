package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/engine"
)

// NewFundCommand creates the fund command.
func NewFundCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fund <identity> <amount>",
		Short: "Credit a holding from outside the commune",
		Long: `Credit a holding with base units from outside the commune.

Stands in for the host's native funding in local use. The credit is
recorded in the audit log as Host.fund.

Example:
  commune fund <identity> 1000000000`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			holder, err := parseHolder(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid amount", err)
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.engine.Fund(s.ctx, holder, amount); err != nil {
				return s.out.Fail(err)
			}
			balance, err := s.engine.Balance(s.ctx, holder)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(map[string]interface{}{
				"holder":  holder,
				"balance": balance,
			}, Fields{
				{"holder", holder},
				{"balance", balance},
			})
		},
	}
}

// NewBalanceCommand creates the balance command.
func NewBalanceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <identity|pool>",
		Short: "Show the balance of a holding",
		Long: `Show the balance of a holding in base units.

"pool" names the commune pool.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			holder, err := parseHolder(args[0])
			if err != nil {
				return err
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			balance, err := s.engine.Balance(s.ctx, holder)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(map[string]interface{}{
				"holder":  holder,
				"balance": balance,
			}, Fields{
				{"holder", holder},
				{"balance", balance},
			})
		},
	}
}

// parseHolder accepts a base58 key or "pool".
func parseHolder(value string) (address.Key, error) {
	if value == "pool" {
		pool, _, err := engine.CommuneAddress()
		if err != nil {
			return address.Key{}, WrapExitError(ExitCommandError, "failed to derive pool address", err)
		}
		return pool, nil
	}
	return parseKey("identity", value)
}
