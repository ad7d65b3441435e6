package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestInvoicectl(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoicer.db")
	t.Setenv("INVOICER_DATABASE_DRIVER", "sqlite")
	t.Setenv("INVOICER_DATABASE_PATH", path)
	t.Setenv("INVOICER_LOG_LEVEL", "error")

	execute(t, "migrate")
	assert.Equal(t, "INV-0001\n", execute(t, "next-number"))

	db, err := database.NewConnection(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := repository.NewInvoiceRepository(db)
	ctx := context.Background()
	var first *model.Invoice
	for _, number := range []string{"INV-0009", "INV-A001", "CUSTOM-77"} {
		inv := &model.Invoice{
			InvoiceNumber: number,
			Status:        model.StatusDraft,
			IssueDate:     "2024-01-01",
			Currency:      model.DefaultCurrency,
			InvoiceTitle:  model.DefaultInvoiceTitle,
			Template:      model.DefaultTemplate,
		}
		require.NoError(t, repo.Create(ctx, inv))
		if first == nil {
			first = inv
		}
	}
	require.NoError(t, db.Model(&model.Invoice{}).Where("invoice_number = ?", "INV-0009").
		Updates(map[string]any{"invoice_title": "", "footer_message": ""}).Error)

	assert.Equal(t, "INV-A002\n", execute(t, "next-number"))

	out := execute(t, "backfill-defaults", "--title", "Tax Invoice")
	// one blank title plus three blank footers
	assert.Equal(t, "updated 4 field(s)\n", out)

	inv, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tax Invoice", inv.InvoiceTitle)
	assert.Equal(t, model.DefaultFooterMessage, inv.FooterMessage)
}
