// Package credits keeps the credit balance of the signed-in user.
// Every balance change is recorded as a transaction; the balance never goes negative.
package credits

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultInitialCredits = 250

type ILedger interface {
	Balance() int
	Purchase(amount int) (domain.CreditTransaction, error)
	Spend(amount int, description string) (domain.CreditTransaction, error)
	Refund(tx domain.CreditTransaction) (domain.CreditTransaction, error)
	History() []domain.CreditTransaction
}

// Journal persists the transactions of one user.
type Journal interface {
	Append(user domain.UserID, tx domain.CreditTransaction) error
	List(user domain.UserID) ([]domain.CreditTransaction, error)
}

type Ledger struct {
	mu      sync.RWMutex
	log     *slog.Logger
	balance int
	history []domain.CreditTransaction
	now     func() time.Time
	owner   domain.UserID
	journal Journal
}

func NewLedger(log *slog.Logger, initial int) *Ledger {
	return &Ledger{log: log, balance: initial, now: time.Now}
}

// OpenLedger replays the journal of user on top of the initial balance.
// Transactions recorded afterwards are appended to the journal.
func OpenLedger(log *slog.Logger, initial int, user domain.UserID, journal Journal) (*Ledger, error) {
	history, err := journal.List(user)
	if err != nil {
		return nil, fmt.Errorf("credit history of %s: %w", user, err)
	}
	ledger := NewLedger(log, initial)
	ledger.owner = user
	ledger.journal = journal
	for _, tx := range history {
		switch tx.Type {
		case domain.TransactionPurchase, domain.TransactionRefund:
			ledger.balance += tx.Amount
		case domain.TransactionUsage:
			ledger.balance -= tx.Amount
		}
	}
	ledger.history = history
	return ledger, nil
}

func (l *Ledger) Balance() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Purchase adds bought credits to the balance.
func (l *Ledger) Purchase(amount int) (domain.CreditTransaction, error) {
	if amount <= 0 {
		return domain.CreditTransaction{}, fmt.Errorf("%w: %d", errors.ErrInvalidAmount, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	tx, err := l.record(domain.TransactionPurchase, amount, fmt.Sprintf("Purchased %d credits", amount))
	if err != nil {
		return domain.CreditTransaction{}, err
	}
	l.balance += amount
	return tx, nil
}

// Spend withdraws credits, failing when the balance is too low.
func (l *Ledger) Spend(amount int, description string) (domain.CreditTransaction, error) {
	if amount <= 0 {
		return domain.CreditTransaction{}, fmt.Errorf("%w: %d", errors.ErrInvalidAmount, amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balance < amount {
		return domain.CreditTransaction{}, fmt.Errorf("%w: balance %d, cost %d", errors.ErrInsufficientCredits, l.balance, amount)
	}
	tx, err := l.record(domain.TransactionUsage, amount, description)
	if err != nil {
		return domain.CreditTransaction{}, err
	}
	l.balance -= amount
	return tx, nil
}

// Refund gives back the credits of a usage transaction.
func (l *Ledger) Refund(tx domain.CreditTransaction) (domain.CreditTransaction, error) {
	if tx.Type != domain.TransactionUsage || tx.Amount <= 0 {
		return domain.CreditTransaction{}, fmt.Errorf("%w: cannot refund %s transaction %s", errors.ErrInvalidAmount, tx.Type, tx.ID)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	refund, err := l.record(domain.TransactionRefund, tx.Amount, "Refund: "+tx.Description)
	if err != nil {
		return domain.CreditTransaction{}, err
	}
	l.balance += tx.Amount
	return refund, nil
}

// History returns transactions oldest first.
func (l *Ledger) History() []domain.CreditTransaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.CreditTransaction(nil), l.history...)
}

// record journals a transaction before it is added to the history.
// Callers change the balance only once record succeeded.
func (l *Ledger) record(kind domain.TransactionType, amount int, description string) (domain.CreditTransaction, error) {
	tx := domain.CreditTransaction{
		ID:          uuid.New(),
		Type:        kind,
		Amount:      amount,
		Description: description,
		Date:        l.now().UTC(),
	}
	if l.journal != nil {
		if err := l.journal.Append(l.owner, tx); err != nil {
			l.log.Error("Credit transaction not journaled", "transaction_id", tx.ID, "error", err)
			return domain.CreditTransaction{}, fmt.Errorf("%w: %s %d: %w", errors.ErrJournal, kind, amount, err)
		}
	}
	l.history = append(l.history, tx)
	l.log.Debug("Credit transaction recorded", "type", kind, "amount", amount)
	return tx, nil
}
