package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionUsage    TransactionType = "usage"
	TransactionRefund   TransactionType = "refund"
)

type CreditTransaction struct {
	ID          uuid.UUID
	Type        TransactionType
	Amount      int
	Description string
	Date        time.Time
}

// Plan is a purchasable tier of a creative service.
type Plan struct {
	ID      string
	Service ServiceType
	Name    string
	Cost    int
}

// ServicePurchase is a request to buy a plan, with the free-form brief the user filled in.
type ServicePurchase struct {
	Service ServiceType
	PlanID  string
	Data    map[string]string
}
