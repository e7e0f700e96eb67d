package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankd-dev/bankd/internal/auth"
	"github.com/bankd-dev/bankd/internal/config"
	"github.com/bankd-dev/bankd/internal/models"
)

// newTestServer spins up a server over a throwaway sqlite database
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Database.URL = filepath.Join(t.TempDir(), "bank.db")
	cfg.Redis.Address = "localhost:6379"

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

type apiResponse struct {
	status int
	body   map[string]interface{}
}

// call makes a JSON request and decodes the object response, if any
func call(t *testing.T, ts *httptest.Server, method, path, token string, payload interface{}) apiResponse {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := apiResponse{status: resp.StatusCode}
	json.NewDecoder(resp.Body).Decode(&out.body)
	return out
}

// signupUser registers a user and returns their token
func signupUser(t *testing.T, ts *httptest.Server, username string) string {
	t.Helper()

	resp := call(t, ts, http.MethodPost, "/req/signup", "", map[string]string{
		"username": username,
		"password": "hunter22hunter22",
	})
	require.Equal(t, http.StatusCreated, resp.status)
	token, _ := resp.body["jwt"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)

	signupUser(t, ts, "alice")

	// Duplicate username is rejected
	resp := call(t, ts, http.MethodPost, "/req/signup", "", map[string]string{
		"username": "alice",
		"password": "hunter22hunter22",
	})
	assert.Equal(t, http.StatusConflict, resp.status)

	// Login with the right password
	resp = call(t, ts, http.MethodPost, "/req/login", "", map[string]string{
		"username": "alice",
		"password": "hunter22hunter22",
	})
	require.Equal(t, http.StatusOK, resp.status)
	assert.NotEmpty(t, resp.body["jwt"])

	// Wrong password gets the generic message
	resp = call(t, ts, http.MethodPost, "/req/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Invalid username or password", resp.body["message"])

	// Unknown user gets the same message as a wrong password
	resp = call(t, ts, http.MethodPost, "/req/login", "", map[string]string{
		"username": "mallory",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Invalid username or password", resp.body["message"])
}

func TestFirstUserIsAdmin(t *testing.T) {
	ts := newTestServer(t)

	first := signupUser(t, ts, "alice")
	second := signupUser(t, ts, "bob")

	resp := call(t, ts, http.MethodGet, "/api/user", first, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "alice", resp.body["username"])
	assert.Contains(t, fmt.Sprint(resp.body["roles"]), "ROLE_ADMIN")

	resp = call(t, ts, http.MethodGet, "/api/user", second, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.NotContains(t, fmt.Sprint(resp.body["roles"]), "ROLE_ADMIN")
}

func TestIdentityRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	signupUser(t, ts, "alice")

	resp := call(t, ts, http.MethodGet, "/api/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)

	resp = call(t, ts, http.MethodGet, "/api/user", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.status)
}

func TestDashboardDefaults(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	resp := call(t, ts, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.status)

	account, ok := resp.body["account"].(map[string]interface{})
	require.True(t, ok, "dashboard response must nest the account object")
	assert.NotEmpty(t, account["accountNumber"])
	assert.EqualValues(t, 0, account["balance"])
	assert.EqualValues(t, 100000, account["dailyWithdrawalLimit"])
	assert.EqualValues(t, 500000, account["dailyTransferLimit"])
}

func TestDepositAndWithdraw(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	resp := call(t, ts, http.MethodPost, "/api/deposit", token, map[string]int64{"amount": 500_00})
	require.Equal(t, http.StatusOK, resp.status)
	assert.EqualValues(t, 500_00, resp.body["balance"])

	resp = call(t, ts, http.MethodPost, "/api/withdraw", token, map[string]int64{"amount": 200_00})
	require.Equal(t, http.StatusOK, resp.status)
	assert.EqualValues(t, 300_00, resp.body["balance"])

	// Overdraft is refused and the balance is untouched
	resp = call(t, ts, http.MethodPost, "/api/withdraw", token, map[string]int64{"amount": 900_00})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Equal(t, "Insufficient funds", resp.body["message"])

	resp = call(t, ts, http.MethodGet, "/api/dashboard", token, nil)
	account := resp.body["account"].(map[string]interface{})
	assert.EqualValues(t, 300_00, account["balance"])
}

func TestWithdrawDailyLimit(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	call(t, ts, http.MethodPost, "/api/deposit", token, map[string]int64{"amount": 5000_00})

	// The default withdrawal limit is $1000 per day
	resp := call(t, ts, http.MethodPost, "/api/withdraw", token, map[string]int64{"amount": 800_00})
	require.Equal(t, http.StatusOK, resp.status)

	resp = call(t, ts, http.MethodPost, "/api/withdraw", token, map[string]int64{"amount": 300_00})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
	assert.Equal(t, "Daily withdrawal limit exceeded", resp.body["message"])
}

func TestTransfer(t *testing.T) {
	ts := newTestServer(t)
	alice := signupUser(t, ts, "alice")
	bob := signupUser(t, ts, "bob")

	call(t, ts, http.MethodPost, "/api/deposit", alice, map[string]int64{"amount": 1000_00})

	resp := call(t, ts, http.MethodGet, "/api/dashboard", bob, nil)
	bobAccount := resp.body["account"].(map[string]interface{})
	bobNumber := bobAccount["accountNumber"].(string)

	resp = call(t, ts, http.MethodPost, "/api/transfer", alice, map[string]interface{}{
		"toAccountNumber": bobNumber,
		"amount":          250_00,
		"description":     "rent",
	})
	require.Equal(t, http.StatusOK, resp.status)
	assert.EqualValues(t, 750_00, resp.body["balance"])
	assert.Contains(t, resp.body["reference"], "TRF-")

	// Both legs land in the ledger
	resp = call(t, ts, http.MethodGet, "/api/dashboard", bob, nil)
	bobAccount = resp.body["account"].(map[string]interface{})
	assert.EqualValues(t, 250_00, bobAccount["balance"])

	// Unknown recipient
	resp = call(t, ts, http.MethodPost, "/api/transfer", alice, map[string]interface{}{
		"toAccountNumber": "0000000000",
		"amount":          10_00,
	})
	assert.Equal(t, http.StatusNotFound, resp.status)

	// Self transfer is refused
	resp = call(t, ts, http.MethodGet, "/api/dashboard", alice, nil)
	aliceNumber := resp.body["account"].(map[string]interface{})["accountNumber"].(string)
	resp = call(t, ts, http.MethodPost, "/api/transfer", alice, map[string]interface{}{
		"toAccountNumber": aliceNumber,
		"amount":          10_00,
	})
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	ts := newTestServer(t)
	admin := signupUser(t, ts, "alice") // first user gets the admin role
	user := signupUser(t, ts, "bob")

	resp := call(t, ts, http.MethodGet, "/api/admin/users", user, nil)
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = call(t, ts, http.MethodGet, "/api/admin/users", admin, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestLogoutIsStateless(t *testing.T) {
	ts := newTestServer(t)
	token := signupUser(t, ts, "alice")

	resp := call(t, ts, http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.status)

	// The token itself is still valid; discarding it is the client's job
	resp = call(t, ts, http.MethodGet, "/api/user", token, nil)
	assert.Equal(t, http.StatusOK, resp.status)
}

func TestSeededUsersCanLogIn(t *testing.T) {
	const seedYAML = `users:
  - username: daisy
    password: correct-horse-battery
    balance: 25000
`
	dir := t.TempDir()
	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seedYAML), 0o644))

	cfg := &config.Config{}
	cfg.Database.URL = filepath.Join(dir, "bank.db")
	cfg.Redis.Address = "localhost:6379"
	cfg.Seed.File = seedPath

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	// The seeded user can log in without anyone ever signing up
	resp := call(t, ts, http.MethodPost, "/req/login", "", map[string]string{
		"username": "daisy",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, resp.status)
	token, _ := resp.body["jwt"].(string)
	require.NotEmpty(t, token)

	resp = call(t, ts, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	account := resp.body["account"].(map[string]interface{})
	assert.EqualValues(t, 250_00, account["balance"])

	// Signup still works, and does not hand out admin on a seeded database
	newcomer := signupUser(t, ts, "alice")
	resp = call(t, ts, http.MethodGet, "/api/user", newcomer, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.NotContains(t, fmt.Sprint(resp.body["roles"]), "ROLE_ADMIN")
}

func TestSignupRollsBackWhenTokenSigningFails(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.URL = filepath.Join(t.TempDir(), "bank.db")
	cfg.Redis.Address = "localhost:6379"

	srv, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	// Simulate a process whose signing key was never loaded
	auth.InitializeJWT("")

	resp := call(t, ts, http.MethodPost, "/req/signup", "", map[string]string{
		"username": "alice",
		"password": "hunter22hunter22",
	})
	require.Equal(t, http.StatusInternalServerError, resp.status)

	// Nothing was committed, so the same username works once signing does
	var appConfig models.Config
	require.NoError(t, srv.GetDB().First(&appConfig).Error)
	auth.InitializeJWT(appConfig.JWTSecret)

	token := signupUser(t, ts, "alice")

	// The failed attempt did not consume the first-user admin bootstrap
	resp = call(t, ts, http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, fmt.Sprint(resp.body["roles"]), "ROLE_ADMIN")
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	resp := call(t, ts, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)
}
