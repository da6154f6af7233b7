package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"

	"salesku/internal/handlers"
	"salesku/internal/middleware"
	"salesku/internal/models"
	"salesku/internal/repositories"
	"salesku/internal/services"
	"salesku/internal/session"
)

// newTestApp wires the full route surface against in-memory repositories and
// an in-memory session store, with the two default accounts seeded.
func newTestApp(t *testing.T, loginRate limiter.Rate) (*fiber.App, *repositories.MockUserRepository) {
	t.Helper()

	userRepo := repositories.NewMockUserRepository()
	salesRepo := repositories.NewMockSalesRepository(userRepo)
	sessionStore := session.NewPlainStore(session.NewMemoryKV())

	authService := services.NewAuthService(userRepo, sessionStore, "test_jwt_secret")
	require.NoError(t, authService.Bootstrap(context.Background()))
	userService := services.NewUserService(userRepo)
	salesService := services.NewSalesService(salesRepo, nil, nil)
	reportService := services.NewReportService(userRepo, salesRepo)

	authRequired := middleware.AuthRequired(authService)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	salesOnly := middleware.RequireRole(models.RoleSales)
	loginLimiter := middleware.LoginRateLimit(loginRate)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1, loginLimiter, authRequired)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1, authRequired, adminOnly)
	handlers.NewSalesHandler(salesService).RegisterRoutes(apiV1, authRequired, salesOnly)
	handlers.NewReportHandler(reportService).RegisterRoutes(apiV1, authRequired, adminOnly)

	return app, userRepo
}

func defaultRate() limiter.Rate {
	return limiter.Rate{Period: time.Minute, Limit: 100}
}

// doJSON performs a request against the app and decodes the JSON response.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reqBody)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := make(map[string]interface{})
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	}
	return resp.StatusCode, body
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "login failed: %v", body)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t, defaultRate())

	// Seeded admin account logs in and is routed to the admin home.
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "admin",
		"password": "admin123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ADMIN", body["role"])
	assert.Equal(t, "/admin", body["home"])
	assert.NotEmpty(t, body["token"])

	// Wrong password fails the same way as an unknown username.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "admin",
		"password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "ghost",
		"password": "whatever123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	// Short password never reaches the credential check.
	status, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "admin",
		"password": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotNil(t, body["errors"])
}

func TestAuthorizationGate(t *testing.T) {
	app, _ := newTestApp(t, defaultRate())

	// Unauthenticated access is pointed back to login.
	status, body := doJSON(t, app, http.MethodGet, "/api/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "/login", body["redirect"])

	// A sales session opening an admin-only view gets nothing back.
	salesToken := login(t, app, "sales", "sales123")
	status, body = doJSON(t, app, http.MethodGet, "/api/v1/users", salesToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Nil(t, body["users"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/reports/daily", salesToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// And the reverse: an admin session cannot submit sales records.
	adminToken := login(t, app, "admin", "admin123")
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/sales", adminToken, map[string]interface{}{
		"store_name":    "Toko Maju",
		"store_address": "Jl. Sudirman No. 1",
		"latitude":      -6.2,
		"longitude":     106.8,
		"amount":        "100000",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSessionRevocation(t *testing.T) {
	app, _ := newTestApp(t, defaultRate())
	token := login(t, app, "admin", "admin123")

	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)

	// The token itself is unchanged but its session is gone; the gate
	// re-checks the store on every request.
	status, body := doJSON(t, app, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "/login", body["redirect"])
}

func TestCreateUser(t *testing.T) {
	app, userRepo := newTestApp(t, defaultRate())
	adminToken := login(t, app, "admin", "admin123")

	// Target arrives as formatted input text.
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":         "Budi Santoso",
		"username":     "budi",
		"password":     "rahasia123",
		"role":         "SALES",
		"target_omset": "Rp 1.000.000",
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)

	created, _ := body["user"].(map[string]interface{})
	require.NotNil(t, created)
	assert.Equal(t, "budi", created["username"])
	assert.Equal(t, float64(1_000_000), created["target_omset"])

	// The new account can log in and is routed to the sales home.
	status, body = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "budi",
		"password": "rahasia123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/sales", body["home"])

	// Duplicate username is rejected and writes nothing.
	usersBefore, err := userRepo.ListAll(context.Background())
	require.NoError(t, err)
	status, body = doJSON(t, app, http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":     "Second Admin",
		"username": "admin",
		"password": "admin456",
		"role":     "ADMIN",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.NotNil(t, body["errors"])
	usersAfter, err := userRepo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, usersAfter, len(usersBefore))

	// A sales account without a target is rejected.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":     "Tanpa Target",
		"username": "tanpa",
		"password": "rahasia123",
		"role":     "SALES",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// A target that is nothing but currency decoration parses to zero and
	// is rejected the same way.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":         "Target Kosong",
		"username":     "kosong",
		"password":     "rahasia123",
		"role":         "SALES",
		"target_omset": "Rp .,",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown roles never reach the store.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":     "Perampok",
		"username": "perampok",
		"password": "rahasia123",
		"role":     "SUPERUSER",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSalesSubmissionAndReports(t *testing.T) {
	app, _ := newTestApp(t, defaultRate())
	adminToken := login(t, app, "admin", "admin123")

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/users", adminToken, map[string]interface{}{
		"name":         "Budi Santoso",
		"username":     "budi",
		"password":     "rahasia123",
		"role":         "SALES",
		"target_omset": "1000000",
	})
	require.Equal(t, http.StatusCreated, status)
	budiToken := login(t, app, "budi", "rahasia123")

	// Missing location blocks the submission.
	status, body := doJSON(t, app, http.MethodPost, "/api/v1/sales", budiToken, map[string]interface{}{
		"store_name":    "Toko Maju",
		"store_address": "Jl. Sudirman No. 1",
		"latitude":      0.0,
		"longitude":     0.0,
		"amount":        "Rp 300.000",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotNil(t, body["errors"])

	// Empty amount is rejected before parsing turns it into zero.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/sales", budiToken, map[string]interface{}{
		"store_name":    "Toko Maju",
		"store_address": "Jl. Sudirman No. 1",
		"latitude":      -6.2,
		"longitude":     106.8,
		"amount":        "",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Two accepted submissions, amounts in mixed input formats.
	for _, amount := range []string{"Rp 300.000", "400000"} {
		status, body = doJSON(t, app, http.MethodPost, "/api/v1/sales", budiToken, map[string]interface{}{
			"store_name":    "Toko Maju",
			"store_address": "Jl. Sudirman No. 1",
			"latitude":      -6.2,
			"longitude":     106.8,
			"amount":        amount,
		})
		require.Equal(t, http.StatusCreated, status, "body: %v", body)
		assert.Equal(t, "Lat: -6.200000, Long: 106.800000", body["location"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/sales/mine", budiToken, nil)
	assert.Equal(t, http.StatusOK, status)
	records, _ := body["records"].([]interface{})
	assert.Len(t, records, 2)

	// Monthly achievement: 700k against a 1M target is 70%.
	status, body = doJSON(t, app, http.MethodGet, "/api/v1/reports/monthly", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	achievements, _ := body["achievements"].([]interface{})
	require.Len(t, achievements, 2) // budi plus the seeded sales account

	var budi map[string]interface{}
	for _, a := range achievements {
		entry := a.(map[string]interface{})
		if entry["name"] == "Budi Santoso" {
			budi = entry
		}
	}
	require.NotNil(t, budi)
	assert.Equal(t, float64(700_000), budi["total_omset"])
	assert.Equal(t, "Rp 700.000", budi["total_display"])
	assert.InDelta(t, 70.0, budi["achievement"].(float64), 1e-9)
	assert.Equal(t, "orange", budi["indicator"])

	// Daily progress feed carries both records and the grand total.
	status, body = doJSON(t, app, http.MethodGet, "/api/v1/reports/daily", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	entries, _ := body["entries"].([]interface{})
	require.Len(t, entries, 2)
	assert.Equal(t, "Rp 700.000", body["total_display"])
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "Budi Santoso", first["submitter_name"])
}

func TestLoginRateLimit(t *testing.T) {
	app, _ := newTestApp(t, limiter.Rate{Period: time.Minute, Limit: 2})

	payload := map[string]interface{}{
		"username": "admin",
		"password": "wrongpass",
	}
	for i := 0; i < 2; i++ {
		status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", payload)
		require.Equal(t, http.StatusUnauthorized, status)
	}

	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", payload)
	assert.Equal(t, http.StatusTooManyRequests, status)
}
