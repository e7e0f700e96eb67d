// Package ledger is the single entry point for mutating account balances.
// Every balance change goes through Post so the transaction history and the
// stored balance can never drift apart.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bankd-dev/bankd/internal/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLimitExceeded     = errors.New("daily limit exceeded")
	ErrAccountNotFound   = errors.New("account not found")
)

// Post applies a signed amount (cents) to the account and records a ledger
// entry. Must be called inside a gorm transaction so the balance update and
// the ledger row commit together.
func Post(tx *gorm.DB, accountID, txType string, amount int64, counterparty, description string) (*models.Transaction, error) {
	var account models.Account
	if err := tx.Where("id = ?", accountID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	newBalance := account.Balance + amount
	if newBalance < 0 {
		return nil, ErrInsufficientFunds
	}

	if err := tx.Model(&account).Update("balance", newBalance).Error; err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	entry := &models.Transaction{
		AccountID:    accountID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: newBalance,
		Counterparty: counterparty,
		Description:  description,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	return entry, nil
}

// OutflowToday sums the money that left the account today (UTC) via the
// given transaction types. Used for daily limit checks.
func OutflowToday(tx *gorm.DB, accountID string, txTypes ...string) (int64, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	var total int64
	err := tx.Model(&models.Transaction{}).
		Select("COALESCE(SUM(-amount), 0)").
		Where("account_id = ? AND type IN ? AND amount < 0 AND created_at >= ?",
			accountID, txTypes, startOfDay).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum outflow: %w", err)
	}

	return total, nil
}

// CheckDailyLimit returns ErrLimitExceeded if spending amount more via the
// given transaction types would exceed limit for today.
func CheckDailyLimit(tx *gorm.DB, accountID string, amount, limit int64, txTypes ...string) error {
	if limit <= 0 {
		return nil
	}
	spent, err := OutflowToday(tx, accountID, txTypes...)
	if err != nil {
		return err
	}
	if spent+amount > limit {
		return ErrLimitExceeded
	}
	return nil
}
