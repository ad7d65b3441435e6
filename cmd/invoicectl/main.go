// Command invoicectl runs maintenance tasks against the invoice database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/logger"
	"invoicer/internal/model"
	"invoicer/internal/numbering"
	"invoicer/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "invoicectl",
		Short:         "Maintenance tasks for the invoicer database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr"})

			a.db, err = database.NewConnection(cfg.Database, a.log)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.AddCommand(
		newMigrateCmd(a),
		newBackfillCmd(a),
		newNextNumberCmd(a),
	)
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			a.log.Info("schema migrated")
			return nil
		},
	}
}

func newBackfillCmd(a *app) *cobra.Command {
	var title, footer string

	cmd := &cobra.Command{
		Use:   "backfill-defaults",
		Short: "Fill in missing invoice titles and footer messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := repository.NewInvoiceRepository(a.db)
			tx := repository.NewTransactionManager(a.db)

			var updated int64
			err := tx.RunInTx(cmd.Context(), func(txCtx context.Context) error {
				n, err := repo.BackfillDefaults(txCtx, title, footer)
				updated = n
				return err
			})
			if err != nil {
				return fmt.Errorf("backfill defaults: %w", err)
			}

			a.log.Info("backfill complete", zap.Int64("updated", updated))
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d field(s)\n", updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", model.DefaultInvoiceTitle, "title for invoices without one")
	cmd.Flags().StringVar(&footer, "footer", model.DefaultFooterMessage, "footer message for invoices without one")
	return cmd
}

func newNextNumberCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next-number",
		Short: "Print the next generated invoice number",
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := repository.NewInvoiceRepository(a.db).ListNumbers(cmd.Context())
			if err != nil {
				return fmt.Errorf("list invoice numbers: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), numbering.Next(numbers))
			return nil
		},
	}
}
