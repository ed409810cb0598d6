package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/models"
)

func testConfigs() []common.AccountConfig {
	return []common.AccountConfig{
		{ID: "alpha", DisplayName: "Alpha One", UID: "uid-1", Enabled: true, InitialCapital: 10000},
		{ID: "beta", DisplayName: "Beta Two", UID: "uid-2", Enabled: false, InitialCapital: 10000},
		{ID: "gamma", DisplayName: "Gamma Three", UID: "uid-3", Enabled: true, InitialCapital: 10000},
		{ID: "delta", DisplayName: "Delta Four", UID: "", Enabled: true},
	}
}

func TestListAllPreservesConfigOrder(t *testing.T) {
	r := New(testConfigs())

	all := r.ListAll()
	require.Len(t, all, 4)
	assert.Equal(t, "alpha", all[0].ID)
	assert.Equal(t, "beta", all[1].ID)
	assert.Equal(t, "gamma", all[2].ID)
	assert.Equal(t, "delta", all[3].ID)
}

func TestListEnabledFiltersDisabledAndMissingUID(t *testing.T) {
	r := New(testConfigs())

	enabled := r.ListEnabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, "uid-1", enabled[0].UID)
	assert.Equal(t, "uid-3", enabled[1].UID)
}

func TestFindByUID(t *testing.T) {
	r := New(testConfigs())

	account, found := r.FindByUID("uid-3")
	require.True(t, found)
	assert.Equal(t, "Gamma Three", account.DisplayName)

	_, found = r.FindByUID("uid-99")
	assert.False(t, found)
}

func TestFindByIDAndName(t *testing.T) {
	r := New(testConfigs())

	byID, found := r.FindByID("beta")
	require.True(t, found)
	assert.Equal(t, "uid-2", byID.UID)

	byName, found := r.FindByName("Alpha One")
	require.True(t, found)
	assert.Equal(t, "alpha", byName.ID)
}

func TestBalanceSnapshotSeededWithUSDT(t *testing.T) {
	r := New(testConfigs())
	account, _ := r.FindByUID("uid-1")
	assert.Equal(t, "USDT", account.Balance.Asset)
	assert.Zero(t, account.Balance.Balance)
}

func TestUpdateBalanceSnapshotReplacesWholesale(t *testing.T) {
	r := New(testConfigs())

	snapshot := models.BalanceSnapshot{
		Asset:            "USDT",
		Balance:          12345.67,
		AvailableBalance: 12000,
		UpdateTimeMs:     1700000000000,
	}
	require.NoError(t, r.UpdateBalanceSnapshot("uid-1", snapshot))

	account, _ := r.FindByUID("uid-1")
	assert.Equal(t, snapshot, account.Balance)
}

func TestUpdateBalanceSnapshotUnknownUID(t *testing.T) {
	r := New(testConfigs())
	err := r.UpdateBalanceSnapshot("uid-99", models.BalanceSnapshot{})
	assert.Error(t, err)
}

func TestListAllReturnsCopy(t *testing.T) {
	r := New(testConfigs())

	all := r.ListAll()
	all[0].DisplayName = "mutated"

	fresh := r.ListAll()
	assert.Equal(t, "Alpha One", fresh[0].DisplayName)
}
