package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeFilterSince(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	now := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC) // 23:30 on the 9th in São Paulo

	today := FilterToday.Since(now, loc)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, loc), today)
	assert.True(t, FilterAll.Since(now, loc).IsZero())
	assert.Equal(t, now.AddDate(0, 0, -7).Unix(), FilterWeek.Since(now, loc).Unix())
}

func TestParseTimeFilter(t *testing.T) {
	f, err := ParseTimeFilter(" 7D ")
	require.NoError(t, err)
	assert.Equal(t, FilterWeek, f)

	f, err = ParseTimeFilter("all")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseTimeFilter("yesterday")
	assert.ErrorIs(t, err, ErrInvalidTimeFilter)
}
