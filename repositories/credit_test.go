package repositories

import (
	"artist-hub/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreditRepository_Lists_User_Transactions_In_Order(t *testing.T) {
	req := require.New(t)
	repository := NewCreditRepository(openDB(t))
	at := time.Date(2024, 11, 2, 18, 30, 0, 0, time.UTC)

	later := domain.CreditTransaction{ID: uuid.New(), Type: domain.TransactionUsage, Amount: 60,
		Description: "Purchase artwork Single Cover plan", Date: at.Add(time.Minute)}
	earlier := domain.CreditTransaction{ID: uuid.New(), Type: domain.TransactionPurchase, Amount: 100,
		Description: "Purchased 100 credits", Date: at}

	req.NoError(repository.Append("amara", later))
	req.NoError(repository.Append("amara", earlier))
	req.NoError(repository.Append("kofi", earlier))

	history, err := repository.List("amara")
	req.NoError(err)
	req.Equal([]domain.CreditTransaction{earlier, later}, history)

	none, err := repository.List("zuri")
	req.NoError(err)
	req.Empty(none)
}
