package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// CurrentUser returns the authenticated identity
func (c *Client) CurrentUser(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Dashboard returns the account summary
func (c *Client) Dashboard(ctx context.Context) (*AccountSummary, error) {
	var resp struct {
		Account AccountSummary `json:"account"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

// Transactions returns the most recent ledger entries
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type balanceResponse struct {
	Balance int64 `json:"balance"`
}

// Deposit credits the account and returns the new balance
func (c *Client) Deposit(ctx context.Context, amount int64) (int64, error) {
	var resp balanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/deposit", amountRequest{Amount: amount}, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Withdraw debits the account and returns the new balance
func (c *Client) Withdraw(ctx context.Context, amount int64) (int64, error) {
	var resp balanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/withdraw", amountRequest{Amount: amount}, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

type transferRequest struct {
	ToAccountNumber string `json:"toAccountNumber"`
	Amount          int64  `json:"amount"`
	Description     string `json:"description,omitempty"`
}

// Transfer moves money to another account by number
func (c *Client) Transfer(ctx context.Context, toAccountNumber string, amount int64, description string) (*TransferResult, error) {
	var result TransferResult
	req := transferRequest{ToAccountNumber: toAccountNumber, Amount: amount, Description: description}
	if err := c.do(ctx, http.MethodPost, "/api/transfer", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Payees returns the registered bill-payment recipients
func (c *Client) Payees(ctx context.Context) ([]Payee, error) {
	var payees []Payee
	if err := c.do(ctx, http.MethodGet, "/api/payees", nil, &payees); err != nil {
		return nil, err
	}
	return payees, nil
}

// CreatePayee registers a bill-payment recipient
func (c *Client) CreatePayee(ctx context.Context, name, accountNumber string) (*Payee, error) {
	var payee Payee
	req := map[string]string{"name": name, "accountNumber": accountNumber}
	if err := c.do(ctx, http.MethodPost, "/api/payees", req, &payee); err != nil {
		return nil, err
	}
	return &payee, nil
}

// BillPayments returns the user's bill payment history
func (c *Client) BillPayments(ctx context.Context) ([]BillPayment, error) {
	var payments []BillPayment
	if err := c.do(ctx, http.MethodGet, "/api/billpay", nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

type billPaymentRequest struct {
	PayeeID      string     `json:"payeeId"`
	Amount       int64      `json:"amount"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// PayBill pays a registered payee, immediately or at the scheduled time
func (c *Client) PayBill(ctx context.Context, payeeID string, amount int64, scheduledFor *time.Time) (*BillPayment, error) {
	var payment BillPayment
	req := billPaymentRequest{PayeeID: payeeID, Amount: amount, ScheduledFor: scheduledFor}
	if err := c.do(ctx, http.MethodPost, "/api/billpay", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Loans returns the user's loan applications and active loans
func (c *Client) Loans(ctx context.Context) ([]Loan, error) {
	var loans []Loan
	if err := c.do(ctx, http.MethodGet, "/api/loans", nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

type loanApplicationRequest struct {
	Amount     int64  `json:"amount"`
	TermMonths int    `json:"termMonths"`
	Purpose    string `json:"purpose,omitempty"`
}

// ApplyForLoan submits a loan application
func (c *Client) ApplyForLoan(ctx context.Context, amount int64, termMonths int, purpose string) (*Loan, error) {
	var loan Loan
	req := loanApplicationRequest{Amount: amount, TermMonths: termMonths, Purpose: purpose}
	if err := c.do(ctx, http.MethodPost, "/api/loans", req, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// LoanSchedule returns a loan and its repayment schedule
func (c *Client) LoanSchedule(ctx context.Context, loanID string) (*LoanSchedule, error) {
	var schedule LoanSchedule
	if err := c.do(ctx, http.MethodGet, "/api/loans/"+loanID+"/schedule", nil, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// Profile returns the user's profile
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateEmail changes the profile email address, resetting verification
func (c *Client) UpdateEmail(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPatch, "/api/profile", map[string]string{"email": email}, nil)
}

// ChangePassword rotates the account password
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	req := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.do(ctx, http.MethodPost, "/api/profile/password", req, nil)
}

// RequestEmailVerification asks the server to issue a verification code
func (c *Client) RequestEmailVerification(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/profile/verify-email", nil, nil)
}

// ConfirmEmailVerification submits the verification code
func (c *Client) ConfirmEmailVerification(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/api/profile/verify-email/confirm",
		map[string]string{"code": code}, nil)
}

// DeleteAccount permanently closes the account. The caller must clear the
// local session afterwards.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/profile", nil, nil)
}

// AdminUsers lists all users (admin only)
func (c *Client) AdminUsers(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type adminCreateUserRequest struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// AdminCreateUser creates a user from the admin console
func (c *Client) AdminCreateUser(ctx context.Context, username, password, email string, roles []string) (*AdminUser, error) {
	var user AdminUser
	req := adminCreateUserRequest{Username: username, Password: password, Email: email, Roles: roles}
	if err := c.do(ctx, http.MethodPost, "/api/admin/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// AdminDeleteUser deletes a user by ID
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+userID, nil, nil)
}

// AdminLoans lists loans by status ("pending", "active", ..., or "all")
func (c *Client) AdminLoans(ctx context.Context, status string) ([]AdminLoan, error) {
	path := "/api/admin/loans"
	if status != "" {
		path += "?status=" + status
	}
	var loans []AdminLoan
	if err := c.do(ctx, http.MethodGet, path, nil, &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

// AdminApproveLoan approves a pending loan, queueing disbursement
func (c *Client) AdminApproveLoan(ctx context.Context, loanID string) (*Loan, error) {
	var loan Loan
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/admin/loans/%s/approve", loanID), nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

// AdminRejectLoan rejects a pending loan
func (c *Client) AdminRejectLoan(ctx context.Context, loanID string) (*Loan, error) {
	var loan Loan
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/admin/loans/%s/reject", loanID), nil, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}
