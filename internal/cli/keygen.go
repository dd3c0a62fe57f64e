package cli

import (
	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/address"
)

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an identity",
		Long: `Generate a fresh ed25519 identity.

The public key is the identity passed to --as and to identity arguments.
The private key is printed once and not stored.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := formatter(rootOpts, cmd)
			pub, priv, err := address.NewIdentity()
			if err != nil {
				return out.Fail(err)
			}
			secret := base58.Encode(priv)
			return out.Record(map[string]string{
				"identity": pub.String(),
				"private":  secret,
			}, Fields{
				{"identity", pub},
				{"private", secret},
			})
		},
	}
}
