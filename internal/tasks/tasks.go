package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeExecuteBillPayment = "billpay:execute"
	TypeDisburseLoan       = "loan:disburse"
	TypeAccrueInterest     = "interest:accrue"
)

// BillPaymentPayload identifies the bill payment to execute
type BillPaymentPayload struct {
	BillPaymentID string `json:"bill_payment_id"`
}

// LoanPayload identifies the loan to disburse
type LoanPayload struct {
	LoanID string `json:"loan_id"`
}

// NewExecuteBillPaymentTask creates a task that debits the account and
// marks the payment completed once its scheduled time arrives
func NewExecuteBillPaymentTask(billPaymentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(BillPaymentPayload{BillPaymentID: billPaymentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeExecuteBillPayment, payload), nil
}

// NewDisburseLoanTask creates a task that credits an approved loan's
// principal to the borrower's account
func NewDisburseLoanTask(loanID string) (*asynq.Task, error) {
	payload, err := json.Marshal(LoanPayload{LoanID: loanID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeDisburseLoan, payload), nil
}

// NewAccrueInterestTask creates a task that posts savings interest to every
// account, enqueued by the accrual scheduler
func NewAccrueInterestTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeAccrueInterest, nil), nil
}

// ParseBillPaymentPayload parses the payload of a billpay:execute task
func ParseBillPaymentPayload(task *asynq.Task) (BillPaymentPayload, error) {
	var payload BillPaymentPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseLoanPayload parses the payload of a loan:disburse task
func ParseLoanPayload(task *asynq.Task) (LoanPayload, error) {
	var payload LoanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
