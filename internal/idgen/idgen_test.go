package idgen

import (
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/snackbar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsPrefixedAndUnique(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	gen := New(node)

	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := gen.NewID(PrefixSale)
		require.True(t, strings.HasPrefix(id, "sale-"), id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewLogID(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	id := New(node).NewLogID()
	assert.True(t, strings.HasPrefix(id, "log-"))
	assert.Len(t, id, len("log-")+26)
}

func TestRegisterSnowflakeRejectsOutOfRangeNode(t *testing.T) {
	_, err := RegisterSnowflake(config.Config{SnowflakeNode: 5000})
	assert.Error(t, err)
}
