package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"bank_account/internal/domain"
)

var ErrInvalidSignature = errors.New("invalid signature")

type Signer struct {
	secretKey []byte
	logger    *slog.Logger
}

func NewSigner(secretKey string, logger *slog.Logger) *Signer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Signer{
		secretKey: []byte(secretKey),
		logger:    logger,
	}
}

func (s *Signer) Sign(data []byte) string {
	mac := hmac.New(sha256.New, s.secretKey)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(data []byte, signature string) error {
	expected := s.Sign(data)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		s.logger.Warn("Signature verification failed",
			slog.String("received", signature))
		return ErrInvalidSignature
	}
	return nil
}

// SignTransaction signs the receipt fields that identify the operation and
// its result. Signature itself is excluded.
func (s *Signer) SignTransaction(tx *domain.Transaction) string {
	return s.Sign(transactionPayload(tx))
}

func (s *Signer) VerifyTransaction(tx *domain.Transaction) error {
	if err := s.Verify(transactionPayload(tx), tx.Signature); err != nil {
		return fmt.Errorf("transaction %s: %w", tx.ID, err)
	}
	return nil
}

func transactionPayload(tx *domain.Transaction) []byte {
	return []byte(fmt.Sprintf("%s:%s:%.2f:%s:%s:%.2f:%s:%d",
		tx.ID, tx.Type, tx.Amount, tx.FromAccountID, tx.ToAccountID,
		tx.BalanceAfter, tx.Status, tx.CreatedAt.UnixNano()))
}
