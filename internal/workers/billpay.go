package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/ledger"
	"github.com/bankd-dev/bankd/internal/models"
	"github.com/bankd-dev/bankd/internal/tasks"
)

// HandleExecuteBillPayment debits the payer's account for a scheduled bill
// payment once its due time arrives. Insufficient funds mark the payment
// failed rather than retrying forever.
func HandleExecuteBillPayment(ctx context.Context, t *asynq.Task, db *gorm.DB, log zerolog.Logger) error {
	payload, err := tasks.ParseBillPaymentPayload(t)
	if err != nil {
		return err
	}

	var payment models.BillPayment
	if err := db.Preload("Payee").Where("id = ?", payload.BillPaymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("bill_payment_id", payload.BillPaymentID).Msg("Bill payment no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("failed to load bill payment: %w", err)
	}

	if payment.Status != models.BillPaymentScheduled {
		log.Debug().Str("bill_payment_id", payment.ID).Str("status", payment.Status).Msg("Bill payment already settled")
		return nil
	}

	var account models.Account
	if err := db.Where("user_id = ?", payment.UserID).First(&account).Error; err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	now := time.Now().UTC()
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.Post(tx, account.ID, models.TxBillPayment, -payment.Amount,
			payment.Payee.Name, fmt.Sprintf("Bill payment to %s", payment.Payee.Name))
		if err != nil {
			return err
		}
		return tx.Model(&payment).Updates(map[string]interface{}{
			"status":      models.BillPaymentCompleted,
			"executed_at": now,
		}).Error
	})

	if errors.Is(err, ledger.ErrInsufficientFunds) {
		log.Warn().Str("bill_payment_id", payment.ID).Msg("Bill payment failed: insufficient funds")
		return db.Model(&payment).Updates(map[string]interface{}{
			"status":      models.BillPaymentFailed,
			"fail_reason": "insufficient funds",
		}).Error
	}
	if err != nil {
		return fmt.Errorf("failed to execute bill payment: %w", err)
	}

	log.Info().
		Str("bill_payment_id", payment.ID).
		Str("payee", payment.Payee.Name).
		Int64("amount", payment.Amount).
		Msg("Bill payment executed")
	return nil
}
