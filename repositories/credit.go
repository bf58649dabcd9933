package repositories

import (
	"artist-hub/domain"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// CreditRepository journals credit transactions per user.
// Keys are "credit:{user}:{timestamp_padded}:{id}", read back in chronological order.
type CreditRepository struct {
	db *badger.DB
}

func NewCreditRepository(db *badger.DB) CreditRepository {
	return CreditRepository{db: db}
}

func (r CreditRepository) Append(user domain.UserID, tx domain.CreditTransaction) error {
	bytes, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	key := fmt.Sprintf("credit:%s:%019d:%s", user, tx.Date.UnixNano(), tx.ID)
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

func (r CreditRepository) List(user domain.UserID) ([]domain.CreditTransaction, error) {
	var history []domain.CreditTransaction
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("credit:%s:", user))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var tx domain.CreditTransaction
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tx)
			}); err != nil {
				return err
			}
			history = append(history, tx)
		}
		return nil
	})
	return history, err
}
