package collector

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_Stable(t *testing.T) {
	a := CacheKey("/financials/search/line-items", map[string]any{
		"tickers":    []string{"MSFT", "AAPL"},
		"line_items": []string{"revenue", "net_income"},
		"period":     "ttm",
	})
	b := CacheKey("/financials/search/line-items", map[string]any{
		"period":     "ttm",
		"line_items": []string{"net_income", "revenue"},
		"tickers":    []string{"AAPL", "MSFT"},
	})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "financial-datasets:/financials/search/line-items:"))

	c := CacheKey("/financials/search/line-items", map[string]any{
		"tickers": []string{"AAPL"},
		"period":  "ttm",
	})
	assert.NotEqual(t, a, c)
}

func TestCacheKey_DoesNotMutateInput(t *testing.T) {
	tickers := []string{"MSFT", "AAPL"}
	CacheKey("/x", map[string]any{"tickers": tickers})
	assert.Equal(t, []string{"MSFT", "AAPL"}, tickers)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Hour)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_NoTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	c.now = func() time.Time { return time.Now().AddDate(10, 0, 0) }
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
}
