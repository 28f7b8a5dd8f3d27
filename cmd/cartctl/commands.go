package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/inteiros/GoStack-GoMarketplace/internal/app"
	"github.com/inteiros/GoStack-GoMarketplace/internal/cart"
	"github.com/inteiros/GoStack-GoMarketplace/internal/config"
	"github.com/inteiros/GoStack-GoMarketplace/internal/domain"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/logger"
)

const closeTimeout = 30 * time.Second

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cartctl",
		Short:        "Inspect and edit the persisted shopping cart",
		SilenceUsage: true,
	}

	root.AddCommand(newListCmd(), newAddCmd(), newIncCmd(), newDecCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCart(cmd, func(ctx context.Context, s *cart.Store) {})
		},
	}
}

func newAddCmd() *cobra.Command {
	var p domain.Product

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a product, or increment it when already in the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.ID = args[0]
			if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
				return fmt.Errorf("price must be a finite number")
			}
			if p.Price < 0 {
				return fmt.Errorf("price must not be negative")
			}
			return withCart(cmd, func(ctx context.Context, s *cart.Store) {
				s.AddToCart(ctx, p)
			})
		},
	}

	cmd.Flags().StringVar(&p.Title, "title", "", "product title")
	cmd.Flags().StringVar(&p.ImageURL, "image-url", "", "product image URL")
	cmd.Flags().Float64Var(&p.Price, "price", 0, "unit price")
	return cmd
}

func newIncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inc <id>",
		Short: "Increment the quantity of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, func(ctx context.Context, s *cart.Store) {
				s.Increment(ctx, args[0])
			})
		},
	}
}

func newDecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dec <id>",
		Short: "Decrement the quantity of a product, stopping at zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(cmd, func(ctx context.Context, s *cart.Store) {
				s.Decrement(ctx, args[0])
			})
		},
	}
}

// withCart runs fn inside one provider lifetime against the configured
// backend and prints the resulting cart. Closing the provider flushes the
// write before the backend is released.
func withCart(cmd *cobra.Command, fn func(context.Context, *cart.Store)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithWriter("cartctl", cfg.LogLevel, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend, err := app.OpenBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("storage close error", slog.String("error", err.Error()))
		}
	}()

	provider := cart.NewProvider(backend.Store, app.ProviderOptions(cfg), log)
	s, err := provider.Open(ctx)
	if err != nil {
		return err
	}

	fn(ctx, s)
	products := s.Products()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := provider.Close(closeCtx); err != nil {
		return fmt.Errorf("flush cart: %w", err)
	}

	return printCart(cmd.OutOrStdout(), products)
}

func printCart(w io.Writer, c domain.Cart) error {
	if len(c) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY")
	for _, item := range c {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\n", item.ID, item.Title, item.Price, item.Quantity)
	}
	fmt.Fprintf(tw, "\t\t\t%d\n", c.ItemCount())
	return tw.Flush()
}
