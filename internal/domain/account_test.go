package domain

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(t *testing.T, id AccountID, holder string, balance float64, opts ...AccountOption) *Account {
	t.Helper()
	acc, err := NewAccount(id, holder, balance, opts...)
	require.NoError(t, err)
	return acc
}

func TestNewAccount_Validation(t *testing.T) {
	tests := []struct {
		name    string
		id      AccountID
		holder  string
		balance float64
		opts    []AccountOption
		wantErr error
	}{
		{name: "valid", id: "0001", holder: "Alice", balance: 500},
		{name: "zero balance", id: IntID(7), holder: "Bob", balance: 0},
		{name: "missing id", id: "", holder: "Alice", balance: 10, wantErr: ErrInvalidArgument},
		{name: "empty holder", id: "0001", holder: "", balance: 10, wantErr: ErrInvalidArgument},
		{name: "blank holder", id: "0001", holder: "   ", balance: 10},
		{name: "nan balance", id: "0001", holder: "Alice", balance: math.NaN(), wantErr: ErrInvalidArgument},
		{name: "infinite balance", id: "0001", holder: "Alice", balance: math.Inf(1), wantErr: ErrInvalidArgument},
		{name: "negative balance", id: "x", holder: "Bob", balance: -10, wantErr: ErrInvalidRange},
		{name: "negative limit", id: "0001", holder: "Alice", balance: 10, opts: []AccountOption{WithBalanceLimit(-1)}, wantErr: ErrInvalidRange},
		{name: "balance above limit", id: "0001", holder: "Alice", balance: 200, opts: []AccountOption{WithBalanceLimit(100)}, wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccount(tt.id, tt.holder, tt.balance, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, acc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, acc.ID())
			assert.Equal(t, tt.holder, acc.Holder())
			assert.Equal(t, tt.balance, acc.Balance())
		})
	}
}

func TestIntID(t *testing.T) {
	assert.Equal(t, AccountID("42"), IntID(42))
	assert.Equal(t, "-3", IntID(-3).String())
}

func TestAccount_Deposit(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 500)

	balance, err := acc.Deposit(200)

	require.NoError(t, err)
	assert.Equal(t, 700.0, balance)
	assert.Equal(t, 700.0, acc.Balance())
}

func TestAccount_Withdraw(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 700)

	balance, err := acc.Withdraw(100)

	require.NoError(t, err)
	assert.Equal(t, 600.0, balance)
}

func TestAccount_WithdrawEntireBalance(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 80)

	balance, err := acc.Withdraw(80)

	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestAccount_InvalidAmounts(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		wantErr error
	}{
		{name: "zero", amount: 0, wantErr: ErrInvalidRange},
		{name: "negative", amount: -5, wantErr: ErrInvalidRange},
		{name: "nan", amount: math.NaN(), wantErr: ErrInvalidArgument},
		{name: "positive infinity", amount: math.Inf(1), wantErr: ErrInvalidArgument},
		{name: "negative infinity", amount: math.Inf(-1), wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccount(t, "0001", "Alice", 600)

			_, err := acc.Deposit(tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = acc.Withdraw(tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, 600.0, acc.Balance())
		})
	}
}

func TestAccount_WithdrawInsufficientFunds(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 600)

	_, err := acc.Withdraw(600.01)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, 600.0, acc.Balance())
}

func TestAccount_DepositOverflow(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", math.MaxFloat64)

	_, err := acc.Deposit(math.MaxFloat64)

	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, math.MaxFloat64, acc.Balance())
}

func TestAccount_DepositBeyondLimit(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 90, WithBalanceLimit(100))

	balance, err := acc.Deposit(10)
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)

	_, err = acc.Deposit(0.5)
	assert.ErrorIs(t, err, ErrBalanceLimitExceeded)
	assert.Equal(t, 100.0, acc.Balance())
	assert.Equal(t, 100.0, acc.Limit())
}

func TestAccount_Transfer(t *testing.T) {
	alice := newAccount(t, "0001", "Alice", 600)
	bob := newAccount(t, "0002", "Bob", 250)

	balance, err := alice.Transfer(150, bob)

	require.NoError(t, err)
	assert.Equal(t, 450.0, balance)
	assert.Equal(t, 450.0, alice.Balance())
	assert.Equal(t, 400.0, bob.Balance())
}

func TestAccount_TransferFailures(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		nilTarget bool
		wantErr   error
	}{
		{name: "nil target", amount: 10, nilTarget: true, wantErr: ErrInvalidArgument},
		{name: "insufficient funds", amount: 1000, wantErr: ErrInsufficientFunds},
		{name: "negative amount", amount: -1, wantErr: ErrInvalidRange},
		{name: "nan amount", amount: math.NaN(), wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newAccount(t, "A", "Alice", 600)
			other := newAccount(t, "B", "Bob", 250)

			target := other
			if tt.nilTarget {
				target = nil
			}

			_, err := source.Transfer(tt.amount, target)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 600.0, source.Balance())
			assert.Equal(t, 250.0, other.Balance())
		})
	}
}

func TestAccount_TransferToSelf(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		wantBalance float64
		wantErr     error
	}{
		{name: "within balance", amount: 50, wantBalance: 100},
		{name: "entire balance", amount: 100, wantBalance: 100},
		{name: "insufficient funds", amount: 150, wantErr: ErrInsufficientFunds},
		{name: "zero amount", amount: 0, wantErr: ErrInvalidRange},
		{name: "nan amount", amount: math.NaN(), wantErr: ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newAccount(t, "0001", "Alice", 100)

			balance, err := acc.Transfer(tt.amount, acc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantBalance, balance)
			}
			assert.Equal(t, 100.0, acc.Balance())
		})
	}
}

func TestAccount_TransferRespectsTargetLimit(t *testing.T) {
	source := newAccount(t, "A", "Alice", 600)
	target := newAccount(t, "B", "Bob", 250, WithBalanceLimit(300))

	_, err := source.Transfer(100, target)

	assert.ErrorIs(t, err, ErrBalanceLimitExceeded)
	assert.Equal(t, 600.0, source.Balance())
	assert.Equal(t, 250.0, target.Balance())
}

func TestAccount_Snapshot(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 500, WithBalanceLimit(1000))

	snap := acc.Snapshot()

	assert.Equal(t, AccountSnapshot{ID: "0001", Holder: "Alice", Balance: 500, Limit: 1000}, snap)
}

func TestAccount_ConcurrentDepositsAndWithdrawals(t *testing.T) {
	acc := newAccount(t, "0001", "Alice", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = acc.Deposit(3)
		}()
		go func() {
			defer wg.Done()
			_, _ = acc.Withdraw(2)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1100.0, acc.Balance())
}

func TestAccount_ConcurrentOppositeTransfers(t *testing.T) {
	a := newAccount(t, "A", "Alice", 10000)
	b := newAccount(t, "B", "Bob", 10000)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = a.Transfer(7, b)
		}()
		go func() {
			defer wg.Done()
			_, _ = b.Transfer(5, a)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20000.0, a.Balance()+b.Balance())
	assert.Equal(t, 10000.0-200*7+200*5, a.Balance())
}
