package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}

func TestDialectNames(t *testing.T) {
	for _, typ := range []string{"sqlite", "postgres", "mysql"} {
		d, err := Dialect(Config{Type: typ})
		require.NoError(t, err, typ)
		assert.Equal(t, typ, d.Name())
	}
}

func TestOpenSQLiteInMemory(t *testing.T) {
	conn, err := Open(Config{Type: "sqlite", SQLitePath: "file::memory:"}, zap.NewNop())
	require.NoError(t, err)

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
