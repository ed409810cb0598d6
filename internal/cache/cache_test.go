package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/models"
)

func testCacheConfig() common.CacheConfig {
	return common.CacheConfig{
		BalanceTTL:   "15s",
		TradesTTL:    "60s",
		PositionsTTL: "20s",
	}
}

// fixedClock returns a cache whose clock is controlled by the returned
// setter.
func fixedClock(t *testing.T) (*Cache, func(time.Time)) {
	t.Helper()
	current := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	c := New(testCacheConfig(), WithClock(func() time.Time { return current }))
	return c, func(now time.Time) { current = now }
}

func TestGetReturnsNilOnMiss(t *testing.T) {
	c := New(testCacheConfig())
	assert.Nil(t, c.Get(models.CategoryBalance))
}

func TestSetThenGet(t *testing.T) {
	c := New(testCacheConfig())
	payload := models.AggregateResult{Success: true, SuccessfulCount: 3}
	c.Set(models.CategoryBalance, payload)

	got, ok := c.Get(models.CategoryBalance).(models.AggregateResult)
	require.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestEntryValidJustBeforeTTL(t *testing.T) {
	c, setNow := fixedClock(t)
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	c.Set(models.CategoryBalance, "payload")

	setNow(base.Add(15*time.Second - time.Millisecond))
	assert.Equal(t, "payload", c.Get(models.CategoryBalance))
	assert.True(t, c.IsValid(models.CategoryBalance))
}

func TestEntryExpiredJustAfterTTL(t *testing.T) {
	c, setNow := fixedClock(t)
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	c.Set(models.CategoryBalance, "payload")

	setNow(base.Add(15*time.Second + time.Millisecond))
	assert.Nil(t, c.Get(models.CategoryBalance))
	assert.False(t, c.IsValid(models.CategoryBalance))
}

func TestPerCategoryTTLs(t *testing.T) {
	c, setNow := fixedClock(t)
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	c.Set(models.CategoryBalance, "b")
	c.Set(models.CategoryTrades, "t")
	c.Set(models.CategoryPositions, "p")

	// 30s in: balance (15s) and positions (20s) expired, trades (60s) alive.
	setNow(base.Add(30 * time.Second))
	assert.Nil(t, c.Get(models.CategoryBalance))
	assert.Nil(t, c.Get(models.CategoryPositions))
	assert.Equal(t, "t", c.Get(models.CategoryTrades))
}

func TestSetOverwritesAndResetsAge(t *testing.T) {
	c, setNow := fixedClock(t)
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	c.Set(models.CategoryBalance, "old")
	setNow(base.Add(10 * time.Second))
	c.Set(models.CategoryBalance, "new")

	setNow(base.Add(20 * time.Second))
	assert.Equal(t, "new", c.Get(models.CategoryBalance))

	age, ok := c.Age(models.CategoryBalance)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, age)
}

func TestAgeWithoutEntry(t *testing.T) {
	c := New(testCacheConfig())
	_, ok := c.Age(models.CategoryTrades)
	assert.False(t, ok)
}

func TestClearRemovesOneCategory(t *testing.T) {
	c := New(testCacheConfig())
	c.Set(models.CategoryBalance, "b")
	c.Set(models.CategoryTrades, "t")

	c.Clear(models.CategoryBalance)

	assert.Nil(t, c.Get(models.CategoryBalance))
	assert.Equal(t, "t", c.Get(models.CategoryTrades))
}

func TestDurableEntriesNeverExpire(t *testing.T) {
	c, setNow := fixedClock(t)
	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	c.SetAPI("aster/balance", "uid-1", "payload")

	setNow(base.Add(24 * time.Hour))
	assert.Equal(t, "payload", c.GetAPI("aster/balance", "uid-1"))
}

func TestDurableKeysScopedByAPIAndUID(t *testing.T) {
	c := New(testCacheConfig())
	c.SetAPI("aster/balance", "uid-1", "b1")
	c.SetAPI("aster/trades", "uid-1", "t1")

	assert.Equal(t, "b1", c.GetAPI("aster/balance", "uid-1"))
	assert.Equal(t, "t1", c.GetAPI("aster/trades", "uid-1"))
	assert.Nil(t, c.GetAPI("aster/balance", "uid-2"))
}

func TestClearAllDropsBothStores(t *testing.T) {
	c := New(testCacheConfig())
	c.Set(models.CategoryBalance, "b")
	c.SetAPI("aster/balance", "uid-1", "payload")

	c.ClearAll()

	assert.Nil(t, c.Get(models.CategoryBalance))
	assert.Nil(t, c.GetAPI("aster/balance", "uid-1"))
}

func TestAllPresent(t *testing.T) {
	c := New(testCacheConfig())
	accounts := []models.Account{
		{UID: "uid-1"},
		{UID: "uid-2"},
	}

	assert.False(t, c.AllPresent("aster/balance", nil))
	assert.False(t, c.AllPresent("aster/balance", accounts))

	c.SetAPI("aster/balance", "uid-1", "p1")
	assert.False(t, c.AllPresent("aster/balance", accounts))

	c.SetAPI("aster/balance", "uid-2", "p2")
	assert.True(t, c.AllPresent("aster/balance", accounts))

	// An account without a UID can never be covered.
	withBlank := append(accounts, models.Account{})
	assert.False(t, c.AllPresent("aster/balance", withBlank))
}
