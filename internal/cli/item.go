package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/commune/internal/address"
	"github.com/roach88/commune/internal/engine"
	"github.com/roach88/commune/internal/layout"
)

// ItemOptions holds flags for the item subcommands.
type ItemOptions struct {
	*RootOptions
	As          string
	ID          uint64
	Title       string
	Description string
	Price       uint64
	Seller      string
	Nonce       int
}

// NewItemCommand creates the item command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "List and buy marketplace items",
	}
	cmd.AddCommand(newItemCreateCommand(&ItemOptions{RootOptions: rootOpts}))
	cmd.AddCommand(newItemBuyCommand(&ItemOptions{RootOptions: rootOpts}))
	return cmd
}

func newItemCreateCommand(opts *ItemOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "List an item for sale",
		Long: `List an item for sale. The seller pays the listing tax into the pool
now; the listed price is the scaled price plus the tax.

Example:
  commune item create --as <identity> --id 1 --title Bicycle --description "Red" --price 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seller, err := parseKey("--as", opts.As)
			if err != nil {
				return err
			}
			nonce, err := nonceFor(opts.Nonce, address.ItemSeeds(opts.ID))
			if err != nil {
				return err
			}

			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.engine.CreateItem(s.ctx, seller, engine.CreateItemRequest{
				ID:          opts.ID,
				Title:       opts.Title,
				Description: opts.Description,
				Price:       opts.Price,
				Nonce:       nonce,
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(item, itemFields(item))
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "seller identity (base58)")
	cmd.Flags().Uint64Var(&opts.ID, "id", 0, "item ID")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title (up to 80 characters)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description (up to 1024 characters)")
	cmd.Flags().Uint64Var(&opts.Price, "price", 0, "price in price units")
	cmd.Flags().IntVar(&opts.Nonce, "nonce", -1, "address nonce (default: canonical)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func newItemBuyCommand(opts *ItemOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buy",
		Short: "Buy a listed item",
		Long: `Buy a listed item for its listed price. --seller must name the
item's seller.

Example:
  commune item buy --as <identity> --id 1 --seller <identity>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			buyer, err := parseKey("--as", opts.As)
			if err != nil {
				return err
			}
			seller, err := parseKey("--seller", opts.Seller)
			if err != nil {
				return err
			}

			s, err := openSession(opts.RootOptions, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			item, err := s.engine.CreateMarketSale(s.ctx, buyer, opts.ID, seller)
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Record(item, itemFields(item))
		},
	}

	cmd.Flags().StringVar(&opts.As, "as", "", "buyer identity (base58)")
	cmd.Flags().Uint64Var(&opts.ID, "id", 0, "item ID")
	cmd.Flags().StringVar(&opts.Seller, "seller", "", "the item's seller (base58)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("seller")

	return cmd
}

func itemFields(it layout.Item) Fields {
	buyer := "-"
	if !it.Buyer.IsZero() {
		buyer = it.Buyer.String()
	}
	return Fields{
		{"item", it.ID},
		{"title", it.Title},
		{"description", it.Description},
		{"seller", it.Seller},
		{"buyer", buyer},
		{"price", it.Price},
		{"tax", it.Tax},
		{"sold", it.Sold},
	}
}
