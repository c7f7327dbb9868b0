package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"emsspace/internal/app/server"
	"emsspace/internal/platform/config"
	"emsspace/internal/platform/db"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *struct{ Code, Message string } `json:"error"`
	RequestID string          `json:"requestId"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		Addr:               ":0",
		DatabaseURL:        dbURL,
		JWTSecret:          "workflow-test-secret",
		FrontendDir:        os.TempDir(),
		Environment:        "test",
		SeedCompanyName:    "Workflow Test Co",
		SeedDepartmentName: "Engineering",
		SeedAdminEmail:     "admin@workflow.test",
		SeedAdminPassword:  "Admin123!secure",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 10000,
		MetricsEnabled:     false,
		EventBufferSize:    16,
	}
}

func newTestApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool, "../../../../migrations"); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}
	if err := db.Seed(ctx, pool, cfg); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	app := server.New(cfg, pool)
	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func request(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s response: %v", method, url, err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d (error %+v)", method, url, wantStatus, resp.StatusCode, env.Error)
	}
	return env
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	env := request(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "",
		map[string]string{"email": email, "password": password}, http.StatusOK)

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if data.Token == "" {
		t.Fatal("expected a token")
	}
	return data.Token
}

func seededScope(t *testing.T, client *http.Client, baseURL, adminToken, companyName string) (string, string) {
	t.Helper()
	env := request(t, client, http.MethodGet, baseURL+"/api/v1/directory/companies", adminToken, nil, http.StatusOK)

	var companies []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &companies); err != nil {
		t.Fatalf("decode companies: %v", err)
	}
	companyID := ""
	for _, c := range companies {
		if c.Name == companyName {
			companyID = c.ID
		}
	}
	if companyID == "" {
		t.Fatalf("seed company %q not found", companyName)
	}

	env = request(t, client, http.MethodGet, baseURL+"/api/v1/directory/departments?companyId="+companyID, adminToken, nil, http.StatusOK)
	var departments []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &departments); err != nil {
		t.Fatalf("decode departments: %v", err)
	}
	if len(departments) == 0 {
		t.Fatal("seed department not found")
	}
	return companyID, departments[0].ID
}

func createUser(t *testing.T, client *http.Client, baseURL, adminToken, role, companyID, departmentID string) (string, string) {
	t.Helper()
	email := fmt.Sprintf("%s-%d@workflow.test", role, time.Now().UnixNano())
	password := "Password123!"
	request(t, client, http.MethodPost, baseURL+"/api/v1/auth/users", adminToken, map[string]string{
		"email":        email,
		"password":     password,
		"fullName":     "Test " + role,
		"role":         role,
		"companyId":    companyID,
		"departmentId": departmentID,
	}, http.StatusCreated)
	return email, password
}

func TestRequisitionApprovalChainOverHTTP(t *testing.T) {
	_, ts, cfg := newTestApp(t)
	client := ts.Client()
	baseURL := ts.URL

	adminToken := login(t, client, baseURL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	companyID, departmentID := seededScope(t, client, baseURL, adminToken, cfg.SeedCompanyName)

	employeeEmail, employeePassword := createUser(t, client, baseURL, adminToken, "employee", companyID, departmentID)
	leaderEmail, leaderPassword := createUser(t, client, baseURL, adminToken, "team_leader", companyID, departmentID)
	managerEmail, managerPassword := createUser(t, client, baseURL, adminToken, "manager", companyID, departmentID)

	employeeToken := login(t, client, baseURL, employeeEmail, employeePassword)
	leaderToken := login(t, client, baseURL, leaderEmail, leaderPassword)
	managerToken := login(t, client, baseURL, managerEmail, managerPassword)

	request(t, client, http.MethodPut, baseURL+"/api/v1/auth/pin", leaderToken,
		map[string]string{"pin": "2468"}, http.StatusOK)
	request(t, client, http.MethodPut, baseURL+"/api/v1/auth/pin", managerToken,
		map[string]string{"pin": "1357"}, http.StatusOK)

	env := request(t, client, http.MethodPost, baseURL+"/api/v1/requisitions/", employeeToken, map[string]any{
		"type":        "purchase",
		"title":       "Standing desk",
		"description": "Ergonomics request",
		"amount":      450.0,
	}, http.StatusCreated)

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode requisition: %v", err)
	}
	if created.Status != "pending_leader" {
		t.Fatalf("expected pending_leader, got %s", created.Status)
	}

	// The manager cannot act before the team leader stage is done.
	request(t, client, http.MethodPost, baseURL+"/api/v1/requisitions/"+created.ID+"/approve", managerToken,
		map[string]string{"pin": "1357"}, http.StatusForbidden)

	// Wrong PIN leaves the record untouched.
	request(t, client, http.MethodPost, baseURL+"/api/v1/requisitions/"+created.ID+"/approve", leaderToken,
		map[string]string{"pin": "0000"}, http.StatusForbidden)

	env = request(t, client, http.MethodPost, baseURL+"/api/v1/requisitions/"+created.ID+"/approve", leaderToken,
		map[string]string{"pin": "2468"}, http.StatusOK)
	var afterLeader struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &afterLeader); err != nil {
		t.Fatalf("decode requisition: %v", err)
	}
	if afterLeader.Status != "pending_manager" {
		t.Fatalf("expected pending_manager, got %s", afterLeader.Status)
	}

	env = request(t, client, http.MethodPost, baseURL+"/api/v1/requisitions/"+created.ID+"/approve", managerToken,
		map[string]string{"pin": "1357"}, http.StatusOK)
	var final struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &final); err != nil {
		t.Fatalf("decode requisition: %v", err)
	}
	if final.Status != "approved" {
		t.Fatalf("expected approved, got %s", final.Status)
	}

	// A finalized record accepts no further decisions.
	request(t, client, http.MethodPost, baseURL+"/api/v1/requisitions/"+created.ID+"/approve", managerToken,
		map[string]string{"pin": "1357"}, http.StatusForbidden)
}

func TestLeaveRejectionRequiresReasonOverHTTP(t *testing.T) {
	_, ts, cfg := newTestApp(t)
	client := ts.Client()
	baseURL := ts.URL

	adminToken := login(t, client, baseURL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	companyID, departmentID := seededScope(t, client, baseURL, adminToken, cfg.SeedCompanyName)

	employeeEmail, employeePassword := createUser(t, client, baseURL, adminToken, "employee", companyID, departmentID)
	leaderEmail, leaderPassword := createUser(t, client, baseURL, adminToken, "team_leader", companyID, departmentID)

	employeeToken := login(t, client, baseURL, employeeEmail, employeePassword)
	leaderToken := login(t, client, baseURL, leaderEmail, leaderPassword)

	request(t, client, http.MethodPut, baseURL+"/api/v1/auth/pin", leaderToken,
		map[string]string{"pin": "9090"}, http.StatusOK)

	env := request(t, client, http.MethodPost, baseURL+"/api/v1/leave/requests/", employeeToken, map[string]string{
		"leaveType": "annual",
		"title":     "Spring break",
		"startDate": "2026-04-06",
		"endDate":   "2026-04-10",
	}, http.StatusCreated)

	var created struct {
		ID        string `json:"id"`
		TotalDays int    `json:"totalDays"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode leave request: %v", err)
	}
	if created.TotalDays != 5 {
		t.Fatalf("expected 5 days, got %d", created.TotalDays)
	}

	request(t, client, http.MethodPost, baseURL+"/api/v1/leave/requests/"+created.ID+"/reject", leaderToken,
		map[string]string{"pin": "9090"}, http.StatusBadRequest)

	env = request(t, client, http.MethodPost, baseURL+"/api/v1/leave/requests/"+created.ID+"/reject", leaderToken,
		map[string]string{"pin": "9090", "reason": "Team is at capacity that week"}, http.StatusOK)
	var rejected struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejectionReason"`
	}
	if err := json.Unmarshal(env.Data, &rejected); err != nil {
		t.Fatalf("decode leave request: %v", err)
	}
	if rejected.Status != "rejected" || rejected.RejectionReason == "" {
		t.Fatalf("expected rejected with reason, got %+v", rejected)
	}
}
