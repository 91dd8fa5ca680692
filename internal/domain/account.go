package domain

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"go.uber.org/atomic"
)

// AccountID is the opaque account number. Numeric identifiers are carried in
// their decimal form, see IntID.
type AccountID string

func IntID(n int64) AccountID {
	return AccountID(strconv.FormatInt(n, 10))
}

func (id AccountID) String() string {
	return string(id)
}

// accountSeq orders account locks during transfers.
var accountSeq = atomic.NewUint64(0)

type AccountOption func(*Account)

// WithBalanceLimit caps the balance an account may hold. Zero means no cap.
func WithBalanceLimit(limit float64) AccountOption {
	return func(a *Account) {
		a.limit = limit
	}
}

// Account is a single bank account. It is safe for concurrent use; balance
// changes only through Deposit, Withdraw and Transfer.
type Account struct {
	mu      sync.Mutex
	seq     uint64
	id      AccountID
	holder  string
	balance float64
	limit   float64
}

type AccountSnapshot struct {
	ID      AccountID `json:"id"`
	Holder  string    `json:"holder"`
	Balance float64   `json:"balance"`
	Limit   float64   `json:"limit,omitempty"`
}

func NewAccount(id AccountID, holder string, initialBalance float64, opts ...AccountOption) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: account id is required", ErrInvalidArgument)
	}
	if holder == "" {
		return nil, fmt.Errorf("%w: account holder must be a non-empty string", ErrInvalidArgument)
	}
	if !isFinite(initialBalance) {
		return nil, fmt.Errorf("%w: initial balance must be a valid number", ErrInvalidArgument)
	}
	if initialBalance < 0 {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", ErrInvalidRange)
	}

	account := &Account{
		id:      id,
		holder:  holder,
		balance: initialBalance,
	}
	for _, opt := range opts {
		opt(account)
	}

	if !isFinite(account.limit) || account.limit < 0 {
		return nil, fmt.Errorf("%w: balance limit must be a non-negative number", ErrInvalidRange)
	}
	if account.limit > 0 && initialBalance > account.limit {
		return nil, fmt.Errorf("%w: initial balance %.2f exceeds limit %.2f", ErrInvalidRange, initialBalance, account.limit)
	}

	account.seq = accountSeq.Inc()
	return account, nil
}

func (a *Account) ID() AccountID {
	return a.id
}

func (a *Account) Holder() string {
	return a.holder
}

func (a *Account) Limit() float64 {
	return a.limit
}

func (a *Account) Balance() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

func (a *Account) Snapshot() AccountSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccountSnapshot{
		ID:      a.id,
		Holder:  a.holder,
		Balance: a.balance,
		Limit:   a.limit,
	}
}

// Deposit adds amount and returns the new balance.
func (a *Account) Deposit(amount float64) (float64, error) {
	if err := validateAmount(amount); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkCredit(amount); err != nil {
		return 0, err
	}
	a.balance += amount
	return a.balance, nil
}

// Withdraw subtracts amount and returns the new balance.
func (a *Account) Withdraw(amount float64) (float64, error) {
	if err := validateAmount(amount); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkDebit(amount); err != nil {
		return 0, err
	}
	a.balance -= amount
	return a.balance, nil
}

// Transfer moves amount from a to target and returns a's new balance.
//
// Both accounts stay locked for the whole operation, always in construction
// order, so opposite transfers between the same pair cannot deadlock. The
// debit and the credit are both checked before either is applied; a failed
// transfer leaves both balances untouched.
func (a *Account) Transfer(amount float64, target *Account) (float64, error) {
	if target == nil {
		return 0, fmt.Errorf("%w: transfer target must be an account", ErrInvalidArgument)
	}
	if err := validateAmount(amount); err != nil {
		return 0, err
	}
	if target == a {
		return a.transferToSelf(amount)
	}

	first, second := a, target
	if second.seq < first.seq {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if err := a.checkDebit(amount); err != nil {
		return 0, err
	}
	if err := target.checkCredit(amount); err != nil {
		return 0, fmt.Errorf("credit account %s: %w", target.id, err)
	}

	a.balance -= amount
	target.balance += amount
	return a.balance, nil
}

// transferToSelf debits and credits the same account: the balance is
// unchanged but the funds check still applies.
func (a *Account) transferToSelf(amount float64) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkDebit(amount); err != nil {
		return 0, err
	}
	return a.balance, nil
}

func (a *Account) checkDebit(amount float64) error {
	if amount > a.balance {
		return fmt.Errorf("%w: balance %.2f, requested %.2f", ErrInsufficientFunds, a.balance, amount)
	}
	return nil
}

func (a *Account) checkCredit(amount float64) error {
	next := a.balance + amount
	if math.IsInf(next, 0) {
		return fmt.Errorf("%w: balance would overflow", ErrInvalidRange)
	}
	if a.limit > 0 && next > a.limit {
		return fmt.Errorf("%w: balance %.2f would exceed limit %.2f", ErrBalanceLimitExceeded, next, a.limit)
	}
	return nil
}

func validateAmount(amount float64) error {
	if !isFinite(amount) {
		return fmt.Errorf("%w: amount must be a valid number", ErrInvalidArgument)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidRange)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
