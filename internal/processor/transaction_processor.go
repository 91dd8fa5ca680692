package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bank_account/internal/domain"
	"bank_account/internal/telemetry"
	"bank_account/pkg/crypto"
)

const tracerName = "bank_account/processor"

// Recorder receives operation metrics. *metrics.MetricsCollector satisfies it.
type Recorder interface {
	RecordOperation(operation string, duration time.Duration, amount float64, success bool)
	UpdateAccountBalance(accountID string, balance float64)
}

type Option func(*TransactionProcessor)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *TransactionProcessor) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// TransactionProcessor runs single account operations and reports them. It
// holds no accounts; callers own the *domain.Account values they pass in.
type TransactionProcessor struct {
	metrics Recorder
	signer  *crypto.Signer
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewTransactionProcessor builds a processor. metrics and signer may be nil.
func NewTransactionProcessor(metrics Recorder, signer *crypto.Signer, logger *slog.Logger, opts ...Option) *TransactionProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	p := &TransactionProcessor{
		metrics: metrics,
		signer:  signer,
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *TransactionProcessor) Deposit(ctx context.Context, account *domain.Account, amount float64) (*domain.Transaction, error) {
	if account == nil {
		return nil, fmt.Errorf("%w: deposit account is required", domain.ErrInvalidArgument)
	}

	tx := domain.NewTransaction(domain.TypeDeposit, amount).WithAccounts("", account.ID())
	return p.execute(ctx, tx, func() (float64, error) {
		return account.Deposit(amount)
	}, account)
}

func (p *TransactionProcessor) Withdraw(ctx context.Context, account *domain.Account, amount float64) (*domain.Transaction, error) {
	if account == nil {
		return nil, fmt.Errorf("%w: withdrawal account is required", domain.ErrInvalidArgument)
	}

	tx := domain.NewTransaction(domain.TypeWithdrawal, amount).WithAccounts(account.ID(), "")
	return p.execute(ctx, tx, func() (float64, error) {
		return account.Withdraw(amount)
	}, account)
}

// Transfer moves amount from one account to another. The receipt carries the
// source balance after the transfer.
func (p *TransactionProcessor) Transfer(ctx context.Context, from, to *domain.Account, amount float64) (*domain.Transaction, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("%w: transfer requires source and target accounts", domain.ErrInvalidArgument)
	}

	tx := domain.NewTransaction(domain.TypeTransfer, amount).WithAccounts(from.ID(), to.ID())
	return p.execute(ctx, tx, func() (float64, error) {
		return from.Transfer(amount, to)
	}, from, to)
}

func (p *TransactionProcessor) execute(
	ctx context.Context,
	tx *domain.Transaction,
	apply func() (float64, error),
	accounts ...*domain.Account,
) (*domain.Transaction, error) {
	ctx, span := p.tracer.Start(ctx, "account."+string(tx.Type), trace.WithAttributes(
		attribute.String("transaction.id", tx.ID),
		attribute.String("transaction.type", string(tx.Type)),
		attribute.Float64("transaction.amount", tx.Amount),
		attribute.String("account.from", tx.FromAccountID.String()),
		attribute.String("account.to", tx.ToAccountID.String()),
	))
	defer span.End()

	start := time.Now()

	balance, err := 0.0, ctx.Err()
	if err == nil {
		balance, err = apply()
	}

	if p.metrics != nil {
		p.metrics.RecordOperation(string(tx.Type), time.Since(start), tx.Amount, err == nil)
	}

	if err != nil {
		tx.Fail(err)
		p.sign(tx)

		if isBusinessError(err) {
			telemetry.HandleSpanBusinessErrorEvent(span, string(tx.Type)+".rejected", err)
		} else {
			telemetry.HandleSpanError(span, string(tx.Type)+" failed", err)
		}

		p.logger.WarnContext(ctx, "Account operation failed",
			slog.String("transaction_id", tx.ID),
			slog.String("type", string(tx.Type)),
			slog.String("from_account", tx.FromAccountID.String()),
			slog.String("to_account", tx.ToAccountID.String()),
			slog.Float64("amount", tx.Amount),
			slog.String("error", err.Error()))

		return tx, fmt.Errorf("%s %s: %w", tx.Type, tx.ID, err)
	}

	tx.Complete(balance)
	p.sign(tx)

	if p.metrics != nil {
		for _, account := range accounts {
			p.metrics.UpdateAccountBalance(account.ID().String(), account.Balance())
		}
	}
	span.SetAttributes(attribute.Float64("transaction.balance_after", balance))

	p.logger.InfoContext(ctx, "Account operation completed",
		slog.String("transaction_id", tx.ID),
		slog.String("type", string(tx.Type)),
		slog.String("from_account", tx.FromAccountID.String()),
		slog.String("to_account", tx.ToAccountID.String()),
		slog.Float64("amount", tx.Amount),
		slog.Float64("balance_after", balance))

	return tx, nil
}

func (p *TransactionProcessor) sign(tx *domain.Transaction) {
	if p.signer != nil {
		tx.Signature = p.signer.SignTransaction(tx)
	}
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInvalidArgument) ||
		errors.Is(err, domain.ErrInvalidRange) ||
		errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrBalanceLimitExceeded)
}
