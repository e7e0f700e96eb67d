package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayeesAndImmediateBillPayment(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	call(t, ts, http.MethodPost, "/api/deposit", token, map[string]int64{"amount": 500_00})

	resp := call(t, ts, http.MethodPost, "/api/payees", token, map[string]string{
		"name":          "Electric Co",
		"accountNumber": "9000000001",
	})
	require.Equal(t, http.StatusCreated, resp.status)
	payeeID := resp.body["id"].(string)
	require.NotEmpty(t, payeeID)

	// Paying without a scheduled time settles immediately
	resp = call(t, ts, http.MethodPost, "/api/billpay", token, map[string]interface{}{
		"payeeId": payeeID,
		"amount":  120_00,
	})
	require.Equal(t, http.StatusCreated, resp.status)
	assert.Equal(t, "completed", resp.body["status"])
	assert.Equal(t, "Electric Co", resp.body["payee"])
	assert.NotNil(t, resp.body["executedAt"])

	resp = call(t, ts, http.MethodGet, "/api/dashboard", token, nil)
	account := resp.body["account"].(map[string]interface{})
	assert.EqualValues(t, 380_00, account["balance"])

	// Insufficient funds refuses the payment up front
	resp = call(t, ts, http.MethodPost, "/api/billpay", token, map[string]interface{}{
		"payeeId": payeeID,
		"amount":  10_000_00,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Equal(t, "Insufficient funds", resp.body["message"])

	// Unknown payee
	resp = call(t, ts, http.MethodPost, "/api/billpay", token, map[string]interface{}{
		"payeeId": "no-such-payee",
		"amount":  10_00,
	})
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestLoanApplicationFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := signupUser(t, ts, "alice")
	borrower := signupUser(t, ts, "bob")

	resp := call(t, ts, http.MethodPost, "/api/loans", borrower, map[string]interface{}{
		"amount":     10_000_00,
		"termMonths": 12,
		"purpose":    "new car",
	})
	require.Equal(t, http.StatusCreated, resp.status)
	loanID := resp.body["id"].(string)
	assert.Equal(t, "pending", resp.body["status"])
	assert.EqualValues(t, 799, resp.body["annualRateBps"])
	assert.NotZero(t, resp.body["monthlyPayment"])

	// A too-short term is rejected by validation
	resp = call(t, ts, http.MethodPost, "/api/loans", borrower, map[string]interface{}{
		"amount":     1000_00,
		"termMonths": 3,
	})
	assert.Equal(t, http.StatusBadRequest, resp.status)

	// The borrower sees the loan; the schedule is projected from today
	resp = call(t, ts, http.MethodGet, "/api/loans/"+loanID+"/schedule", borrower, nil)
	require.Equal(t, http.StatusOK, resp.status)
	schedule, ok := resp.body["schedule"].([]interface{})
	require.True(t, ok)
	assert.Len(t, schedule, 12)

	// Another user's loan is invisible
	resp = call(t, ts, http.MethodGet, "/api/loans/"+loanID+"/schedule", admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)

	// The admin console lists the pending application with the borrower
	resp = call(t, ts, http.MethodGet, "/api/admin/loans", admin, nil)
	require.Equal(t, http.StatusOK, resp.status)

	// Rejection is final
	resp = call(t, ts, http.MethodPost, "/api/admin/loans/"+loanID+"/reject", admin, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "rejected", resp.body["status"])

	resp = call(t, ts, http.MethodPost, "/api/admin/loans/"+loanID+"/reject", admin, nil)
	assert.Equal(t, http.StatusConflict, resp.status)
}

func TestProfileFlow(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	resp := call(t, ts, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "alice", resp.body["username"])
	assert.Equal(t, false, resp.body["emailVerified"])

	resp = call(t, ts, http.MethodPatch, "/api/profile", token, map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.status)

	resp = call(t, ts, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, "alice@example.com", resp.body["email"])

	// Password change requires the current password
	resp = call(t, ts, http.MethodPost, "/api/profile/password", token, map[string]string{
		"currentPassword": "wrong-password",
		"newPassword":     "anotherlongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = call(t, ts, http.MethodPost, "/api/profile/password", token, map[string]string{
		"currentPassword": "hunter22hunter22",
		"newPassword":     "anotherlongpassword",
	})
	require.Equal(t, http.StatusOK, resp.status)

	resp = call(t, ts, http.MethodPost, "/req/login", "", map[string]string{
		"username": "alice",
		"password": "anotherlongpassword",
	})
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestDeleteAccountRefusesNonZeroBalance(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	call(t, ts, http.MethodPost, "/api/deposit", token, map[string]int64{"amount": 100_00})

	resp := call(t, ts, http.MethodDelete, "/api/profile", token, nil)
	assert.Equal(t, http.StatusConflict, resp.status)

	call(t, ts, http.MethodPost, "/api/withdraw", token, map[string]int64{"amount": 100_00})

	resp = call(t, ts, http.MethodDelete, "/api/profile", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.status)

	// The token now points at a deleted user
	resp = call(t, ts, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestAdminUserManagement(t *testing.T) {
	ts := newTestServer(t)
	admin := signupUser(t, ts, "alice")

	resp := call(t, ts, http.MethodPost, "/api/admin/users", admin, map[string]interface{}{
		"username": "teller1",
		"password": "hunter22hunter22",
		"roles":    []string{"ROLE_USER"},
	})
	require.Equal(t, http.StatusCreated, resp.status)
	createdID := resp.body["id"].(string)

	// The new user can log in and has an account
	resp = call(t, ts, http.MethodPost, "/req/login", "", map[string]string{
		"username": "teller1",
		"password": "hunter22hunter22",
	})
	require.Equal(t, http.StatusOK, resp.status)
	tellerToken := resp.body["jwt"].(string)

	resp = call(t, ts, http.MethodGet, "/api/dashboard", tellerToken, nil)
	require.Equal(t, http.StatusOK, resp.status)

	// Admins cannot delete themselves
	var adminID string
	for _, u := range callList(t, ts, "/api/admin/users", admin) {
		if u["username"] == "alice" {
			adminID = u["id"].(string)
		}
	}
	require.NotEmpty(t, adminID)

	resp = call(t, ts, http.MethodDelete, "/api/admin/users/"+adminID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = call(t, ts, http.MethodDelete, "/api/admin/users/"+createdID, admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.status)

	// Deleted user's token stops working
	resp = call(t, ts, http.MethodGet, "/api/user", tellerToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

// callList fetches a JSON array endpoint
func callList(t *testing.T, ts *httptest.Server, path, token string) []map[string]interface{} {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}
