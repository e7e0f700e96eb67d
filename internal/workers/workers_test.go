package workers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bankd-dev/bankd/internal/models"
	"github.com/bankd-dev/bankd/internal/tasks"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "workers.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newBorrower(t *testing.T, db *gorm.DB, balance int64) (*models.User, *models.Account) {
	t.Helper()

	user := &models.User{Username: "alice", PasswordHash: "x", Roles: models.RoleUser}
	require.NoError(t, db.Create(user).Error)

	account := &models.Account{UserID: user.ID, Number: models.GenerateAccountNumber(), Balance: balance}
	require.NoError(t, db.Create(account).Error)
	return user, account
}

func TestHandleExecuteBillPayment_Settles(t *testing.T) {
	db := newTestDB(t)
	user, account := newBorrower(t, db, 500_00)

	payee := &models.Payee{UserID: user.ID, Name: "Electric Co", AccountNumber: "9999999999"}
	require.NoError(t, db.Create(payee).Error)

	scheduled := time.Now().UTC()
	payment := &models.BillPayment{
		UserID:       user.ID,
		PayeeID:      payee.ID,
		Amount:       120_00,
		Status:       models.BillPaymentScheduled,
		ScheduledFor: &scheduled,
	}
	require.NoError(t, db.Create(payment).Error)

	task, err := tasks.NewExecuteBillPaymentTask(payment.ID)
	require.NoError(t, err)
	require.NoError(t, HandleExecuteBillPayment(context.Background(), task, db, zerolog.Nop()))

	var updated models.BillPayment
	require.NoError(t, db.First(&updated, "id = ?", payment.ID).Error)
	assert.Equal(t, models.BillPaymentCompleted, updated.Status)
	require.NotNil(t, updated.ExecutedAt)

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 380_00, acct.Balance)
}

func TestHandleExecuteBillPayment_InsufficientFunds(t *testing.T) {
	db := newTestDB(t)
	user, account := newBorrower(t, db, 50_00)

	payee := &models.Payee{UserID: user.ID, Name: "Electric Co", AccountNumber: "9999999999"}
	require.NoError(t, db.Create(payee).Error)

	payment := &models.BillPayment{
		UserID:  user.ID,
		PayeeID: payee.ID,
		Amount:  120_00,
		Status:  models.BillPaymentScheduled,
	}
	require.NoError(t, db.Create(payment).Error)

	task, err := tasks.NewExecuteBillPaymentTask(payment.ID)
	require.NoError(t, err)

	// The handler marks the payment failed instead of retrying
	require.NoError(t, HandleExecuteBillPayment(context.Background(), task, db, zerolog.Nop()))

	var updated models.BillPayment
	require.NoError(t, db.First(&updated, "id = ?", payment.ID).Error)
	assert.Equal(t, models.BillPaymentFailed, updated.Status)
	assert.Equal(t, "insufficient funds", updated.FailReason)

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 50_00, acct.Balance)
}

func TestHandleExecuteBillPayment_AlreadySettled(t *testing.T) {
	db := newTestDB(t)
	user, account := newBorrower(t, db, 500_00)

	payee := &models.Payee{UserID: user.ID, Name: "Electric Co", AccountNumber: "9999999999"}
	require.NoError(t, db.Create(payee).Error)

	payment := &models.BillPayment{
		UserID:  user.ID,
		PayeeID: payee.ID,
		Amount:  120_00,
		Status:  models.BillPaymentCompleted,
	}
	require.NoError(t, db.Create(payment).Error)

	task, err := tasks.NewExecuteBillPaymentTask(payment.ID)
	require.NoError(t, err)
	require.NoError(t, HandleExecuteBillPayment(context.Background(), task, db, zerolog.Nop()))

	// No double debit
	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 500_00, acct.Balance)
}

func TestHandleDisburseLoan(t *testing.T) {
	db := newTestDB(t)
	user, account := newBorrower(t, db, 0)

	loan := &models.Loan{
		UserID:        user.ID,
		Principal:     10_000_00,
		AnnualRateBps: 799,
		TermMonths:    12,
		Status:        models.LoanApproved,
	}
	require.NoError(t, db.Create(loan).Error)

	task, err := tasks.NewDisburseLoanTask(loan.ID)
	require.NoError(t, err)
	require.NoError(t, HandleDisburseLoan(context.Background(), task, db, zerolog.Nop()))

	var updated models.Loan
	require.NoError(t, db.First(&updated, "id = ?", loan.ID).Error)
	assert.Equal(t, models.LoanActive, updated.Status)
	require.NotNil(t, updated.DisbursedAt)

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 10_000_00, acct.Balance)

	// Re-delivery is a no-op once the loan is active
	require.NoError(t, HandleDisburseLoan(context.Background(), task, db, zerolog.Nop()))
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 10_000_00, acct.Balance)
}

func TestHandleDisburseLoan_NotApproved(t *testing.T) {
	db := newTestDB(t)
	user, account := newBorrower(t, db, 0)

	loan := &models.Loan{
		UserID:        user.ID,
		Principal:     10_000_00,
		AnnualRateBps: 799,
		TermMonths:    12,
		Status:        models.LoanPending,
	}
	require.NoError(t, db.Create(loan).Error)

	task, err := tasks.NewDisburseLoanTask(loan.ID)
	require.NoError(t, err)
	require.NoError(t, HandleDisburseLoan(context.Background(), task, db, zerolog.Nop()))

	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 0, acct.Balance)
}

func TestHandleAccrueInterest(t *testing.T) {
	db := newTestDB(t)
	_, account := newBorrower(t, db, 10_000_00)

	require.NoError(t, db.Create(&models.Config{
		JWTSecret:       "x",
		AccrualSchedule: "0 2 * * *",
		SavingsRateBps:  150,
	}).Error)

	task, err := tasks.NewAccrueInterestTask()
	require.NoError(t, err)
	require.NoError(t, HandleAccrueInterest(context.Background(), task, db, zerolog.Nop()))

	// 1.50% APY on $10,000 is about 4 cents per day
	var acct models.Account
	require.NoError(t, db.First(&acct, "id = ?", account.ID).Error)
	assert.EqualValues(t, 10_000_04, acct.Balance)

	var cfg models.Config
	require.NoError(t, db.First(&cfg).Error)
	assert.NotNil(t, cfg.LastAccrualAt)
}
