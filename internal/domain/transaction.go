package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string
type TransactionStatus string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTransfer   TransactionType = "transfer"

	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is the receipt of a single account operation. Receipts are
// handed back to the caller and never retained.
type Transaction struct {
	ID            string            `json:"id"`
	Type          TransactionType   `json:"type"`
	Amount        float64           `json:"amount"`
	FromAccountID AccountID         `json:"from_account_id,omitempty"`
	ToAccountID   AccountID         `json:"to_account_id,omitempty"`
	BalanceAfter  float64           `json:"balance_after"`
	Status        TransactionStatus `json:"status"`
	Error         string            `json:"error,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	Signature     string            `json:"signature,omitempty"`
}

func NewTransaction(t TransactionType, amount float64) *Transaction {
	return &Transaction{
		ID:        uuid.NewString(),
		Type:      t,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func (tx *Transaction) WithAccounts(fromID, toID AccountID) *Transaction {
	tx.FromAccountID = fromID
	tx.ToAccountID = toID
	return tx
}

func (tx *Transaction) Complete(balanceAfter float64) {
	tx.BalanceAfter = balanceAfter
	tx.Status = StatusCompleted
	tx.Error = ""
}

func (tx *Transaction) Fail(err error) {
	tx.Status = StatusFailed
	if err != nil {
		tx.Error = err.Error()
	}
}
