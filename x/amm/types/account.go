package types

import (
	"cosmossdk.io/math"
)

// Account is the per-user deposit ledger record. Balances live in Deposits;
// a user may only hold balance in a token they registered (or one that is
// globally whitelisted at deposit time).
type Account struct {
	AccountId        string              `json:"account_id"`
	Deposits         map[string]math.Int `json:"deposits"`
	RegisteredTokens []string            `json:"registered_tokens"`
	StorageUsed      uint64              `json:"storage_used"`
}

// NewAccount returns an empty ledger account.
func NewAccount(accountID string) *Account {
	return &Account{
		AccountId: accountID,
		Deposits:  make(map[string]math.Int),
	}
}

// GetBalance returns the balance of a token, and whether the token has an
// entry at all (a registered token keeps a zero entry).
func (a *Account) GetBalance(tokenID string) (math.Int, bool) {
	amount, ok := a.Deposits[tokenID]
	if !ok {
		return math.ZeroInt(), false
	}
	return amount, true
}

// Deposit credits amount of tokenID, creating the entry if absent.
func (a *Account) Deposit(tokenID string, amount math.Int) {
	if a.Deposits == nil {
		a.Deposits = make(map[string]math.Int)
	}
	current, ok := a.Deposits[tokenID]
	if !ok {
		current = math.ZeroInt()
	}
	a.Deposits[tokenID] = current.Add(amount)
}

// Withdraw debits amount of tokenID. The entry is kept at zero rather than
// deleted, so the registration survives a full drain.
func (a *Account) Withdraw(tokenID string, amount math.Int) error {
	current, ok := a.Deposits[tokenID]
	if !ok {
		return ErrTokenNotRegistered.Wrapf("token %s", tokenID)
	}
	if current.LT(amount) {
		return ErrNotEnoughTokens.Wrapf("token %s: have %s, want %s", tokenID, current, amount)
	}
	a.Deposits[tokenID] = current.Sub(amount)
	return nil
}

// RegisterToken adds a zero-balance entry for tokenID.
func (a *Account) RegisterToken(tokenID string) {
	if _, ok := a.Deposits[tokenID]; ok {
		return
	}
	a.Deposit(tokenID, math.ZeroInt())
	a.RegisteredTokens = append(a.RegisteredTokens, tokenID)
}

// UnregisterToken removes a token entry; the balance must be zero.
func (a *Account) UnregisterToken(tokenID string) error {
	current, ok := a.Deposits[tokenID]
	if !ok {
		return ErrTokenNotRegistered.Wrapf("token %s", tokenID)
	}
	if !current.IsZero() {
		return ErrNotEnoughTokens.Wrapf("token %s still holds %s", tokenID, current)
	}
	delete(a.Deposits, tokenID)
	for i, id := range a.RegisteredTokens {
		if id == tokenID {
			a.RegisteredTokens = append(a.RegisteredTokens[:i], a.RegisteredTokens[i+1:]...)
			break
		}
	}
	return nil
}

// Tokens returns the token ids with an entry, in map order.
func (a *Account) Tokens() []string {
	out := make([]string, 0, len(a.Deposits))
	for id := range a.Deposits {
		out = append(out, id)
	}
	return out
}

// Lostfound holds tokens whose outbound transfer failed, claimable by the
// user once they are registered to the token again.
type Lostfound struct {
	AccountId string              `json:"account_id"`
	Balances  map[string]math.Int `json:"balances"`
}

// Add credits amount of tokenID to the lostfound record.
func (l *Lostfound) Add(tokenID string, amount math.Int) {
	if l.Balances == nil {
		l.Balances = make(map[string]math.Int)
	}
	current, ok := l.Balances[tokenID]
	if !ok {
		current = math.ZeroInt()
	}
	l.Balances[tokenID] = current.Add(amount)
}
