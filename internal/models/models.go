package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Role names carried in JWT claims and checked by the admin middleware.
// Comparison is always case-insensitive.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Config is the global configuration singleton for a deployment (one row)
type Config struct {
	BaseModel
	// Auto-generated on first boot (64 hex chars)
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"`

	// Savings interest accrual: cron expression and annual rate in basis
	// points. Empty schedule disables accrual.
	AccrualSchedule string     `json:"accrual_schedule"`
	SavingsRateBps  int        `json:"savings_rate_bps" gorm:"not null;default:150"`
	LastAccrualAt   *time.Time `json:"last_accrual_at"`
	NextAccrualAt   *time.Time `json:"next_accrual_at"`
}

// User represents a bank customer or administrator
type User struct {
	BaseModel
	Username      string    `json:"username" gorm:"unique;not null"`
	PasswordHash  string    `json:"-" gorm:"not null"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified" gorm:"not null;default:false"`
	Roles         string    `json:"roles" gorm:"not null;default:'ROLE_USER'"` // comma-separated
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Account *Account `json:"account,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// RoleList splits the stored roles string into individual role names
func (u *User) RoleList() []string {
	if u.Roles == "" {
		return nil
	}
	parts := strings.Split(u.Roles, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	return roles
}

// HasRole reports whether the user holds the given role, ignoring case
func (u *User) HasRole(role string) bool {
	for _, r := range u.RoleList() {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Account represents a customer's checking account. All monetary amounts
// across the system are integer cents.
type Account struct {
	BaseModel
	UserID               string `json:"user_id" gorm:"not null;unique"`
	Number               string `json:"number" gorm:"unique;not null;type:varchar(12)"`
	Balance              int64  `json:"balance" gorm:"not null;default:0"`
	DailyWithdrawalLimit int64  `json:"daily_withdrawal_limit" gorm:"not null;default:100000"`
	DailyTransferLimit   int64  `json:"daily_transfer_limit" gorm:"not null;default:500000"`
}

// GenerateAccountNumber returns a 10-digit account number
func GenerateAccountNumber() string {
	return fmt.Sprintf("%010d", rand.Int63n(1e10))
}

// swapped out in tests to force number collisions
var newAccountNumber = GenerateAccountNumber

const accountNumberAttempts = 5

// NewAccount creates the user's account with a generated number, retrying
// when the number collides with an existing account
func NewAccount(tx *gorm.DB, userID string, balance int64) (*Account, error) {
	var lastErr error
	for i := 0; i < accountNumberAttempts; i++ {
		account := &Account{
			UserID:  userID,
			Number:  newAccountNumber(),
			Balance: balance,
		}
		lastErr = tx.Create(account).Error
		if lastErr == nil {
			return account, nil
		}
		if !isNumberCollision(lastErr) {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("could not allocate an account number: %w", lastErr)
}

func isNumberCollision(err error) bool {
	return err != nil && strings.Contains(err.Error(), "accounts.number")
}

// Transaction types recorded against an account
const (
	TxDeposit      = "deposit"
	TxWithdrawal   = "withdrawal"
	TxTransferIn   = "transfer_in"
	TxTransferOut  = "transfer_out"
	TxBillPayment  = "bill_payment"
	TxInterest     = "interest"
	TxDisbursement = "loan_disbursement"
)

// Transaction is a ledger entry for an account
type Transaction struct {
	BaseModel
	AccountID    string `json:"account_id" gorm:"not null;index"`
	Type         string `json:"type" gorm:"not null"`
	Amount       int64  `json:"amount" gorm:"not null"` // signed cents
	BalanceAfter int64  `json:"balance_after" gorm:"not null"`
	Counterparty string `json:"counterparty"`
	Description  string `json:"description"`

	Account Account `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

// Payee is a registered bill-payment recipient
type Payee struct {
	BaseModel
	UserID        string `json:"user_id" gorm:"not null;index"`
	Name          string `json:"name" gorm:"not null"`
	AccountNumber string `json:"account_number" gorm:"not null"`
}

// Bill payment statuses
const (
	BillPaymentScheduled = "scheduled"
	BillPaymentCompleted = "completed"
	BillPaymentFailed    = "failed"
)

// BillPayment is an immediate or scheduled payment to a payee
type BillPayment struct {
	BaseModel
	UserID       string     `json:"user_id" gorm:"not null;index"`
	PayeeID      string     `json:"payee_id" gorm:"not null"`
	Amount       int64      `json:"amount" gorm:"not null"`
	Status       string     `json:"status" gorm:"not null;default:'scheduled'"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	ExecutedAt   *time.Time `json:"executed_at"`
	FailReason   string     `json:"fail_reason"`

	Payee Payee `json:"payee,omitzero" gorm:"foreignKey:PayeeID;constraint:OnDelete:CASCADE"`
}

// Loan statuses
const (
	LoanPending  = "pending"
	LoanApproved = "approved"
	LoanRejected = "rejected"
	LoanActive   = "active"
)

// Loan represents a customer loan application and, once disbursed, the
// active loan. The repayment schedule is computed on demand, not stored.
type Loan struct {
	BaseModel
	UserID         string     `json:"user_id" gorm:"not null;index"`
	Principal      int64      `json:"principal" gorm:"not null"`
	AnnualRateBps  int        `json:"annual_rate_bps" gorm:"not null"`
	TermMonths     int        `json:"term_months" gorm:"not null"`
	Purpose        string     `json:"purpose"`
	Status         string     `json:"status" gorm:"not null;default:'pending'"`
	MonthlyPayment int64      `json:"monthly_payment" gorm:"not null;default:0"`
	DecidedAt      *time.Time `json:"decided_at"`
	DisbursedAt    *time.Time `json:"disbursed_at"`
}

// EmailVerification is a pending email verification code
type EmailVerification struct {
	BaseModel
	UserID     string     `json:"user_id" gorm:"not null;index"`
	Email      string     `json:"email" gorm:"not null"`
	Code       string     `json:"-" gorm:"not null;type:varchar(6)"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
	ConsumedAt *time.Time `json:"consumed_at"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{}, &Config{}, &Account{}, &Transaction{},
		&Payee{}, &BillPayment{}, &Loan{}, &EmailVerification{},
	)
}
