// Package registry holds the static account registry loaded from
// configuration. The registry is read-only apart from the balance snapshot,
// which the fetch layer overwrites wholesale on each successful balance
// fetch.
package registry

import (
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/rfglabs/modeldesk/internal/common"
	"github.com/rfglabs/modeldesk/internal/models"
)

// Registry is the in-process account list. Accounts are created once at
// startup and never added or removed during a session.
type Registry struct {
	mu       sync.RWMutex
	accounts []models.Account
}

// New builds a registry from config entries, preserving config order.
func New(configs []common.AccountConfig) *Registry {
	accounts := lo.Map(configs, func(c common.AccountConfig, _ int) models.Account {
		return models.Account{
			ID:             c.ID,
			DisplayName:    c.DisplayName,
			ColorTag:       c.ColorTag,
			IconRef:        c.IconRef,
			UID:            c.UID,
			PublicAddress:  c.PublicAddress,
			SignerAddress:  c.SignerAddress,
			Enabled:        c.Enabled,
			InitialCapital: c.InitialCapital,
			Balance:        models.BalanceSnapshot{Asset: "USDT"},
		}
	})
	return &Registry{accounts: accounts}
}

// ListAll returns every account, in registry order.
func (r *Registry) ListAll() []models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Account, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// ListEnabled returns the enabled accounts that have a server-side UID,
// in registry order.
func (r *Registry) ListEnabled() []models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Filter(r.accounts, func(a models.Account, _ int) bool {
		return a.Enabled && a.UID != ""
	})
}

// FindByUID returns the account with the given UID.
func (r *Registry) FindByUID(uid string) (models.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.accounts, func(a models.Account) bool { return a.UID == uid })
}

// FindByID returns the account with the given ID.
func (r *Registry) FindByID(id string) (models.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.accounts, func(a models.Account) bool { return a.ID == id })
}

// FindByName returns the account with the given display name.
func (r *Registry) FindByName(name string) (models.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.accounts, func(a models.Account) bool { return a.DisplayName == name })
}

// UpdateBalanceSnapshot replaces the balance snapshot for the account with
// the given UID. This is the only sanctioned registry mutation.
func (r *Registry) UpdateBalanceSnapshot(uid string, snapshot models.BalanceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.accounts {
		if r.accounts[i].UID == uid {
			r.accounts[i].Balance = snapshot
			return nil
		}
	}
	return fmt.Errorf("account with uid %q not found", uid)
}
