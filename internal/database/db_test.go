package database

import (
	"path/filepath"
	"testing"

	"invoicer/internal/config"
	"invoicer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewConnection_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := NewConnection(cfg, zap.NewNop())
	require.NoError(t, err)

	for _, m := range []any{&model.Invoice{}, &model.Customer{}, &model.CompanyProfile{}, &model.AuditLog{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasColumn(&model.Invoice{}, "fee_tax_rate_percent"))
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	assert.Error(t, err)
}
