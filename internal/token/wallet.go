package token

import (
	"fmt"
	"sync"

	"github.com/xtding233/sticker-gacha/internal/gacha"
)

// Wallet is an in-memory balance of one token. The engine only ever asks it
// CanAfford and Debit.
type Wallet struct {
	mu      sync.Mutex
	balance int
}

func NewWallet(balance int) *Wallet {
	if balance < 0 {
		balance = 0
	}
	return &Wallet{balance: balance}
}

func (w *Wallet) Balance() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

func (w *Wallet) CanAfford(cost int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cost >= 0 && w.balance >= cost
}

// Debit removes cost from the balance or fails with gacha.ErrInsufficientFunds.
func (w *Wallet) Debit(cost int) error {
	if cost < 0 {
		return fmt.Errorf("debit: negative cost %d", cost)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance < cost {
		return fmt.Errorf("%w: balance %d, cost %d", gacha.ErrInsufficientFunds, w.balance, cost)
	}
	w.balance -= cost
	return nil
}

// Credit adds tokens, e.g. from a purchase or a daily grant.
func (w *Wallet) Credit(amount int) {
	if amount <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
}
