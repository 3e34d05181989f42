package sdk

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficientBalance is returned by ledgers when the sender cannot cover a transfer.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger is the fungible balance store campaigns escrow their funds in.
// Amounts are raw scaled integers, same as the on-chain transfer functions.
type Ledger interface {
	Transfer(from, to Address, amount int64, asset Asset) error
	BalanceOf(addr Address, asset Asset) int64
}

// AllowanceLedger adds approve/transferFrom. Hosts whose ledger implements it let
// donors pre-approve a campaign escrow, which then pulls the donation itself.
type AllowanceLedger interface {
	Ledger
	Approve(owner, spender Address, amount int64, asset Asset)
	Allowance(owner, spender Address, asset Asset) int64
	TransferFrom(spender, owner, to Address, amount int64, asset Asset) error
}

// -----------------------------------------------------------------------------
// In-memory ledger
// -----------------------------------------------------------------------------

type allowanceKey struct {
	owner   Address
	spender Address
	asset   Asset
}

// MemLedger keeps balances in process memory. It backs tests, scenario replays and
// any deployment where the real token ledger lives elsewhere and is mirrored in.
type MemLedger struct {
	mu         sync.Mutex
	balances   map[Asset]map[Address]int64
	allowances map[allowanceKey]int64
}

var _ AllowanceLedger = (*MemLedger)(nil)

func NewMemLedger() *MemLedger {
	return &MemLedger{
		balances:   map[Asset]map[Address]int64{},
		allowances: map[allowanceKey]int64{},
	}
}

// Mint credits an account out of thin air. Only used to seed balances.
// Example payload: l.Mint("hive:alice", 100_000, sdk.AssetDonatio)
func (l *MemLedger) Mint(to Address, amount int64, asset Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(to, amount, asset)
}

// BalanceOf returns the balance for the account+asset combo, zero when unknown.
func (l *MemLedger) BalanceOf(addr Address, asset Asset) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][addr]
}

// Transfer moves amount from one account to another.
func (l *MemLedger) Transfer(from, to Address, amount int64, asset Asset) error {
	if amount <= 0 {
		return fmt.Errorf("invalid transfer amount %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount, asset)
}

// Approve lets spender move up to amount of owner's funds through TransferFrom.
func (l *MemLedger) Approve(owner, spender Address, amount int64, asset Asset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := allowanceKey{owner: owner, spender: spender, asset: asset}
	if amount <= 0 {
		delete(l.allowances, key)
		return
	}
	l.allowances[key] = amount
}

// Allowance reports what spender may still draw from owner.
func (l *MemLedger) Allowance(owner, spender Address, asset Asset) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[allowanceKey{owner: owner, spender: spender, asset: asset}]
}

// TransferFrom moves owner funds on behalf of spender and consumes the allowance.
func (l *MemLedger) TransferFrom(spender, owner, to Address, amount int64, asset Asset) error {
	if amount <= 0 {
		return fmt.Errorf("invalid transfer amount %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	key := allowanceKey{owner: owner, spender: spender, asset: asset}
	if l.allowances[key] < amount {
		return fmt.Errorf("allowance of %s for %s too low: %w", owner, spender, ErrInsufficientBalance)
	}
	if err := l.move(owner, to, amount, asset); err != nil {
		return err
	}
	l.allowances[key] -= amount
	if l.allowances[key] == 0 {
		delete(l.allowances, key)
	}
	return nil
}

func (l *MemLedger) move(from, to Address, amount int64, asset Asset) error {
	if l.balances[asset][from] < amount {
		return fmt.Errorf("%s holds %d %s, needs %d: %w", from, l.balances[asset][from], asset, amount, ErrInsufficientBalance)
	}
	l.balances[asset][from] -= amount
	l.credit(to, amount, asset)
	return nil
}

func (l *MemLedger) credit(to Address, amount int64, asset Asset) {
	if l.balances[asset] == nil {
		l.balances[asset] = map[Address]int64{}
	}
	l.balances[asset][to] += amount
}
