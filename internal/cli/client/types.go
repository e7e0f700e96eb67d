package client

import "time"

// Identity is the authenticated identity from GET /api/user
type Identity struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// AccountSummary is the account payload from GET /api/dashboard
type AccountSummary struct {
	AccountNumber        string `json:"accountNumber"`
	Balance              int64  `json:"balance"`
	DailyWithdrawalLimit int64  `json:"dailyWithdrawalLimit"`
	DailyTransferLimit   int64  `json:"dailyTransferLimit"`
}

// Transaction is one ledger entry
type Transaction struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balanceAfter"`
	Counterparty string    `json:"counterparty"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TransferResult is the outcome of a completed transfer
type TransferResult struct {
	Balance   int64  `json:"balance"`
	Reference string `json:"reference"`
}

// Payee is a registered bill-payment recipient
type Payee struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
}

// BillPayment is an immediate or scheduled payment
type BillPayment struct {
	ID           string     `json:"id"`
	Payee        string     `json:"payee"`
	Amount       int64      `json:"amount"`
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduledFor"`
	ExecutedAt   *time.Time `json:"executedAt"`
	FailReason   string     `json:"failReason"`
}

// Loan is a loan application or active loan
type Loan struct {
	ID             string     `json:"id"`
	Principal      int64      `json:"principal"`
	AnnualRateBps  int        `json:"annualRateBps"`
	TermMonths     int        `json:"termMonths"`
	Purpose        string     `json:"purpose"`
	Status         string     `json:"status"`
	MonthlyPayment int64      `json:"monthlyPayment"`
	CreatedAt      time.Time  `json:"createdAt"`
	DisbursedAt    *time.Time `json:"disbursedAt"`
}

// Installment is one row of a repayment schedule
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"dueDate"`
	Payment   int64     `json:"payment"`
	Principal int64     `json:"principal"`
	Interest  int64     `json:"interest"`
	Balance   int64     `json:"balance"`
}

// LoanSchedule is a loan plus its repayment schedule
type LoanSchedule struct {
	Loan     Loan          `json:"loan"`
	Schedule []Installment `json:"schedule"`
}

// Profile is the profile payload
type Profile struct {
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AdminUser is a user row in the admin console
type AdminUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Roles         []string  `json:"roles"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AdminLoan is a loan with borrower info in the admin console
type AdminLoan struct {
	Loan
	Username string `json:"username"`
}
