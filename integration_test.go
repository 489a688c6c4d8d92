package main

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"money-transfer-service/internal/config"
	"money-transfer-service/internal/server"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type IntegrationTestSuite struct {
	suite.Suite
	postgresContainer *postgres.PostgresContainer
	serverInstance    *server.Server
	serverPort        string
	baseURL           string
	client            *http.Client
	dbConnStr         string
}

func (suite *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("money_transfer"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		suite.T().Fatalf("Failed to start postgres container: %s", err)
	}
	suite.postgresContainer = postgresContainer

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		suite.T().Fatalf("Failed to get container host: %s", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		suite.T().Fatalf("Failed to get mapped port: %s", err)
	}

	suite.dbConnStr, err = postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		suite.T().Fatalf("Failed to get connection string: %s", err)
	}

	if err := suite.runMigrations(); err != nil {
		suite.T().Fatalf("Failed to run migrations: %s", err)
	}

	cfg := &config.Config{
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "postgres",
		DBPassword: "password",
		DBName:     "money_transfer",
		DBSSLMode:  "disable",
		ServerPort: "0", // let the OS choose a free port

		FeePercentage:        decimal.RequireFromString("0.005"),
		FeeCap:               decimal.RequireFromString("50.00"),
		CommissionPercentage: decimal.RequireFromString("0.20"),

		SchedulerEnabled: false,
		SeedData:         true,
	}

	serverInstance, serverPort, err := server.StartServer(cfg)
	if err != nil {
		suite.T().Fatalf("Failed to start application server: %s", err)
	}
	suite.serverInstance = serverInstance
	suite.serverPort = serverPort
	suite.baseURL = "http://localhost:" + serverPort

	suite.client = &http.Client{
		Timeout: 30 * time.Second,
	}

	if err := suite.waitForServerReady(); err != nil {
		suite.T().Fatalf("Server never became ready: %s", err)
	}
}

func (suite *IntegrationTestSuite) runMigrations() error {
	db, err := sql.Open("postgres", suite.dbConnStr)
	if err != nil {
		return err
	}
	defer db.Close()

	migrationFiles, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	sort.Slice(migrationFiles, func(i, j int) bool {
		return migrationFiles[i].Name() < migrationFiles[j].Name()
	})

	for _, file := range migrationFiles {
		if strings.HasSuffix(file.Name(), ".sql") {
			migrationSQL, err := migrationsFS.ReadFile(filepath.Join("migrations", file.Name()))
			if err != nil {
				return fmt.Errorf("failed to read migration file %s: %w", file.Name(), err)
			}

			if _, err := db.Exec(string(migrationSQL)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file.Name(), err)
			}
		}
	}

	return nil
}

func (suite *IntegrationTestSuite) waitForServerReady() error {
	timeout := 30 * time.Second
	start := time.Now()

	for time.Since(start) < timeout {
		resp, err := http.Get(suite.baseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return nil
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

func (suite *IntegrationTestSuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if suite.serverInstance != nil {
		suite.serverInstance.Stop(ctx)
	}

	if suite.postgresContainer != nil {
		suite.postgresContainer.Terminate(ctx)
	}
}

// Helper methods for API calls

func (suite *IntegrationTestSuite) getJSON(path string) (int, map[string]interface{}) {
	resp, err := suite.client.Get(suite.baseURL + path)
	if err != nil {
		suite.T().Fatalf("GET %s failed: %s", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		suite.T().Fatalf("GET %s returned unparsable body %q: %s", path, body, err)
	}
	return resp.StatusCode, parsed
}

func (suite *IntegrationTestSuite) postJSON(path string, payload interface{}) (int, map[string]interface{}) {
	var reader io.Reader
	if payload != nil {
		body, _ := json.Marshal(payload)
		reader = bytes.NewReader(body)
	}

	resp, err := suite.client.Post(suite.baseURL+path, "application/json", reader)
	if err != nil {
		suite.T().Fatalf("POST %s failed: %s", path, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		suite.T().Fatalf("POST %s returned unparsable body %q: %s", path, body, err)
	}
	return resp.StatusCode, parsed
}

func (suite *IntegrationTestSuite) transfer(source, dest, amount string) (int, map[string]interface{}) {
	return suite.postJSON("/api/transactions/transfer", map[string]string{
		"source_account_number":      source,
		"destination_account_number": dest,
		"amount":                     amount,
	})
}

func (suite *IntegrationTestSuite) accountBalance(accountNumber string) string {
	status, body := suite.getJSON("/accounts/" + accountNumber)
	assert.Equal(suite.T(), http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	return data["balance"].(string)
}

// assertDecimalEqual compares values numerically so "3995" matches "3995.00".
func (suite *IntegrationTestSuite) assertDecimalEqual(expected, actual string) {
	expectedDec, err := decimal.NewFromString(expected)
	if err != nil {
		suite.T().Fatalf("Invalid expected decimal: %s", expected)
	}

	actualDec, err := decimal.NewFromString(actual)
	if err != nil {
		suite.T().Fatalf("Invalid actual decimal: %s", actual)
	}

	assert.True(suite.T(), expectedDec.Equal(actualDec),
		"Decimal values not equal: expected %s, got %s", expected, actual)
}

// ------------------------------------------------------------------
// Steps below are helpers (non-test methods) executed in the order
// invoked by TestFlow, giving deterministic ordering.
// ------------------------------------------------------------------

func (suite *IntegrationTestSuite) stepHealthCheck() {
	status, body := suite.getJSON("/health")
	assert.Equal(suite.T(), http.StatusOK, status)
	assert.Equal(suite.T(), "healthy", body["status"])
}

func (suite *IntegrationTestSuite) stepSeededAccounts() {
	suite.assertDecimalEqual("5000.00", suite.accountBalance("1000000001"))
	suite.assertDecimalEqual("7500.00", suite.accountBalance("1000000002"))

	status, _ := suite.getJSON("/accounts/9999999999")
	assert.Equal(suite.T(), http.StatusNotFound, status)
}

func (suite *IntegrationTestSuite) stepSuccessfulTransfer() {
	status, body := suite.transfer("1000000001", "1000000002", "1000.00")
	assert.Equal(suite.T(), http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(suite.T(), "SUCCESSFUL", data["status"])
	assert.Equal(suite.T(), "Transfer completed successfully", data["status_message"])
	suite.assertDecimalEqual("5.00", data["transaction_fee"].(string))
	suite.assertDecimalEqual("1005.00", data["billed_amount"].(string))
	assert.NotEmpty(suite.T(), data["reference"])

	suite.assertDecimalEqual("3995.00", suite.accountBalance("1000000001"))
	suite.assertDecimalEqual("8500.00", suite.accountBalance("1000000002"))
}

func (suite *IntegrationTestSuite) stepInsufficientFunds() {
	status, body := suite.transfer("1000000003", "1000000004", "100000.00")
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, status)

	errObj := body["error"].(map[string]interface{})
	assert.Equal(suite.T(), "insufficient_funds", errObj["code"])

	// no balance moved on either side
	suite.assertDecimalEqual("3000.00", suite.accountBalance("1000000003"))
	suite.assertDecimalEqual("4200.00", suite.accountBalance("1000000004"))
}

func (suite *IntegrationTestSuite) stepSameAccountRejected() {
	status, body := suite.transfer("1000000001", "1000000001", "10.00")
	assert.Equal(suite.T(), http.StatusBadRequest, status)

	errObj := body["error"].(map[string]interface{})
	assert.Equal(suite.T(), "invalid_transaction", errObj["code"])

	suite.assertDecimalEqual("3995.00", suite.accountBalance("1000000001"))
}

func (suite *IntegrationTestSuite) stepUnknownAccountRejected() {
	status, body := suite.transfer("1000000001", "8888888888", "10.00")
	assert.Equal(suite.T(), http.StatusNotFound, status)

	errObj := body["error"].(map[string]interface{})
	assert.Equal(suite.T(), "account_not_found", errObj["code"])

	suite.assertDecimalEqual("3995.00", suite.accountBalance("1000000001"))
}

func (suite *IntegrationTestSuite) stepListTransactions() {
	status, body := suite.getJSON("/api/transactions?accountNumber=1000000001")
	assert.Equal(suite.T(), http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	// rejected transfers persist no row, so only the successful one shows
	assert.Equal(suite.T(), float64(1), data["total_elements"])

	content := data["content"].([]interface{})
	first := content[0].(map[string]interface{})
	assert.Equal(suite.T(), "SUCCESSFUL", first["status"])
	suite.assertDecimalEqual("1000.00", first["amount"].(string))

	status, body = suite.getJSON("/api/transactions?status=FAILED")
	assert.Equal(suite.T(), http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(0), data["total_elements"])
}

func (suite *IntegrationTestSuite) stepSweepCommissions() {
	status, body := suite.postJSON("/api/transactions/commissions/sweep", nil)
	assert.Equal(suite.T(), http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(1), data["updated_transactions"])

	// sweeping again is a no-op
	status, body = suite.postJSON("/api/transactions/commissions/sweep", nil)
	assert.Equal(suite.T(), http.StatusOK, status)
	data = body["data"].(map[string]interface{})
	assert.Equal(suite.T(), float64(0), data["updated_transactions"])
}

func (suite *IntegrationTestSuite) stepDailySummary() {
	today := time.Now().Format("2006-01-02")

	status, body := suite.getJSON("/api/transactions/summary?date=" + today)
	assert.Equal(suite.T(), http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	assert.Equal(suite.T(), today, data["date"])
	assert.Equal(suite.T(), float64(1), data["total_transactions"])
	assert.Equal(suite.T(), float64(1), data["successful_transactions"])
	assert.Equal(suite.T(), float64(0), data["failed_transactions"])
	suite.assertDecimalEqual("1000.00", data["total_amount"].(string))
	suite.assertDecimalEqual("5.00", data["total_fees"].(string))
	suite.assertDecimalEqual("1.00", data["total_commission"].(string))

	// regenerating produces the same numbers
	status, body = suite.postJSON("/api/transactions/summary/rebuild?date="+today, nil)
	assert.Equal(suite.T(), http.StatusOK, status)
	rebuilt := body["data"].(map[string]interface{})
	assert.Equal(suite.T(), data["total_transactions"], rebuilt["total_transactions"])
	suite.assertDecimalEqual(data["total_amount"].(string), rebuilt["total_amount"].(string))

	// future dates are rejected
	future := time.Now().AddDate(0, 0, 2).Format("2006-01-02")
	status, _ = suite.getJSON("/api/transactions/summary?date=" + future)
	assert.Equal(suite.T(), http.StatusBadRequest, status)
}

func (suite *IntegrationTestSuite) stepFeeCapApplied() {
	// 1000000005 holds 6100.00; a 6000.00 transfer carries a 30.00 fee,
	// comfortably under the cap, while 20000.00 would exceed any balance,
	// so the cap itself is exercised at the unit level. Verify the fee
	// formula end to end with an uncapped amount instead.
	status, body := suite.transfer("1000000005", "1000000003", "6000.00")
	assert.Equal(suite.T(), http.StatusOK, status)

	data := body["data"].(map[string]interface{})
	suite.assertDecimalEqual("30.00", data["transaction_fee"].(string))
	suite.assertDecimalEqual("6030.00", data["billed_amount"].(string))

	suite.assertDecimalEqual("70.00", suite.accountBalance("1000000005"))
	suite.assertDecimalEqual("9000.00", suite.accountBalance("1000000003"))
}

func (suite *IntegrationTestSuite) TestFlow() {
	suite.stepHealthCheck()
	suite.stepSeededAccounts()
	suite.stepSuccessfulTransfer()
	suite.stepInsufficientFunds()
	suite.stepSameAccountRejected()
	suite.stepUnknownAccountRejected()
	suite.stepListTransactions()
	suite.stepSweepCommissions()
	suite.stepDailySummary()
	suite.stepFeeCapApplied()
}

func TestIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
