// Command sync runs one stock universe reconciliation and exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mock_trader/internal/app/config"
	"mock_trader/internal/app/di"
	universeadapters "mock_trader/internal/feature/universe/adapters"
	"mock_trader/internal/feature/universe/domain"
	"mock_trader/internal/feature/universe/usecase"
	infradb "mock_trader/internal/platform/db"
	"mock_trader/internal/platform/logx"
)

func main() {
	slog.SetDefault(logx.New())

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		exchange string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the stock universe once",
		Long: `Fetches the symbol snapshot for an exchange from Finnhub and reconciles
the Stock_Universe table with it. Intended for backfills and manual runs.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if exchange != "" {
				cfg.Exchange = strings.ToUpper(strings.TrimSpace(exchange))
			}
			if err := cfg.ValidateSync(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := infradb.Open(cfg.DB)
			if err != nil {
				return err
			}
			if err := infradb.Migrate(db, &universeadapters.UniverseModel{}); err != nil {
				return err
			}

			reconciler := usecase.NewReconciler(
				di.NewMarketClient(cfg.Finnhub),
				universeadapters.NewUniverseRepository(db),
				cfg.Exchange,
			)

			out, err := reconciler.Sync(ctx, cfg.Exchange)
			if err != nil {
				slog.Error("sync failed", "exchange", cfg.Exchange, "kind", domain.Kind(err), "error", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exchange=%s inserted=%d updated=%d skipped=%d\n",
				cfg.Exchange, out.Inserted, out.Updated, out.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&exchange, "exchange", "", "exchange code (default: $EXCHANGE)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall timeout for the run")
	return cmd
}
