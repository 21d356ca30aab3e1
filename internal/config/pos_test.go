package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOSConfigDefaultsWhenFileMissing(t *testing.T) {
	holder, err := NewPOSConfigHolder(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DefaultPOSConfig(), holder.Get())
}

func TestPOSConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("pos:\n  orderNumberPrefix: LNC\n  orderNumberWidth: 5\n  defaultUser: Caixa 1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pos.yml"), content, 0o600))

	holder, err := NewPOSConfigHolder(dir)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, "LNC", cfg.OrderNumberPrefix)
	assert.Equal(t, 5, cfg.OrderNumberWidth)
	assert.Equal(t, "Caixa 1", cfg.DefaultUser)
	assert.Equal(t, "BRL", cfg.Currency)
	assert.Equal(t, "Lanchonete 3 Irmãos", cfg.ShopName)
}

func TestPOSConfigPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := []byte("pos:\n  shopName: Cantina da Vila\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pos.yml"), content, 0o600))

	holder, err := NewPOSConfigHolder(dir)
	require.NoError(t, err)

	want := DefaultPOSConfig()
	want.ShopName = "Cantina da Vila"
	assert.Equal(t, want, holder.Get())
}

func TestPOSConfigRejectsInvalidWidth(t *testing.T) {
	dir := t.TempDir()
	content := []byte("pos:\n  orderNumberWidth: 0\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pos.yml"), content, 0o600))

	_, err := NewPOSConfigHolder(dir)
	assert.Error(t, err)
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *POSConfigHolder
	assert.Equal(t, DefaultPOSConfig(), holder.Get())
}

func TestLoadNormalizesBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", " REDIS ")
	t.Setenv("MAX_RECEIPT_BYTES", "1024")
	t.Setenv("SEED_ON_START", "off")

	cfg := Load()
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, int64(1024), cfg.MaxReceiptBytes)
	assert.False(t, cfg.SeedOnStart)

	t.Setenv("STORE_BACKEND", "cassandra")
	assert.Equal(t, BackendSQLite, Load().StoreBackend)
}
