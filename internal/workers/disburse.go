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

// HandleDisburseLoan credits an approved loan's principal to the borrower's
// account and activates the loan
func HandleDisburseLoan(ctx context.Context, t *asynq.Task, db *gorm.DB, log zerolog.Logger) error {
	payload, err := tasks.ParseLoanPayload(t)
	if err != nil {
		return err
	}

	var loan models.Loan
	if err := db.Where("id = ?", payload.LoanID).First(&loan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn().Str("loan_id", payload.LoanID).Msg("Loan no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("failed to load loan: %w", err)
	}

	if loan.Status != models.LoanApproved {
		log.Debug().Str("loan_id", loan.ID).Str("status", loan.Status).Msg("Loan not awaiting disbursement")
		return nil
	}

	var account models.Account
	if err := db.Where("user_id = ?", loan.UserID).First(&account).Error; err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}

	now := time.Now().UTC()
	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.Post(tx, account.ID, models.TxDisbursement, loan.Principal,
			"bankd", fmt.Sprintf("Loan disbursement (%d months at %.2f%%)",
				loan.TermMonths, float64(loan.AnnualRateBps)/100))
		if err != nil {
			return err
		}
		return tx.Model(&loan).Updates(map[string]interface{}{
			"status":       models.LoanActive,
			"disbursed_at": now,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to disburse loan: %w", err)
	}

	log.Info().
		Str("loan_id", loan.ID).
		Str("account_id", account.ID).
		Int64("principal", loan.Principal).
		Msg("Loan disbursed")
	return nil
}
