package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/config"
	"github.com/itfreelance/api/internal/db"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/server"
	"github.com/itfreelance/api/internal/utils"
)

const testPassword = "secret123"

type env struct {
	app *fiber.App
	gdb *gorm.DB
}

func newTestEnv(t *testing.T) *env {
	t.Helper()

	gdb, err := db.ConnectSQLite(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	cfg := config.Config{
		JWTSecret:     "test-secret",
		JWTExpiresMin: 60,
		CORSOrigins:   "http://localhost:3000",
	}
	return &env{app: server.New(gdb, cfg), gdb: gdb}
}

// do performs a JSON request and decodes the response envelope.
func (e *env) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var envelope map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	}
	return resp.StatusCode, envelope
}

func (e *env) register(t *testing.T, name, email, role string) string {
	t.Helper()
	status, body := e.do(t, fiber.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": testPassword,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, status, "register %s: %v", email, body)
	return data(t, body)["token"].(string)
}

func (e *env) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := e.do(t, fiber.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "login %s: %v", email, body)
	return data(t, body)["token"].(string)
}

// seedAdmin creates an admin directly in the store; registration does not
// accept the role.
func (e *env) seedAdmin(t *testing.T, email string) string {
	t.Helper()
	hashed, err := utils.HashPassword(testPassword)
	require.NoError(t, err)
	admin := models.User{
		Name:     "Admin",
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		Status:   models.StatusActive,
	}
	require.NoError(t, e.gdb.Create(&admin).Error)
	return e.login(t, email, testPassword)
}

func (e *env) createCategory(t *testing.T, adminToken, name string) float64 {
	t.Helper()
	status, body := e.do(t, fiber.MethodPost, "/api/categories", adminToken, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, status, "create category %s: %v", name, body)
	category := data(t, body)["category"].(map[string]any)
	return category["id"].(float64)
}

func (e *env) createProject(t *testing.T, clientToken, name string, categoryID float64, extra map[string]any) string {
	t.Helper()
	payload := map[string]any{"name": name, "category_id": categoryID}
	for k, v := range extra {
		payload[k] = v
	}
	status, body := e.do(t, fiber.MethodPost, "/api/projects", clientToken, payload)
	require.Equal(t, http.StatusCreated, status, "create project %s: %v", name, body)
	project := data(t, body)["project"].(map[string]any)
	return project["id"].(string)
}

func (e *env) createOffer(t *testing.T, freelancerToken, projectID string, price float64) string {
	t.Helper()
	status, body := e.do(t, fiber.MethodPost, "/api/projects/"+projectID+"/offers", freelancerToken, map[string]any{
		"price": price,
	})
	require.Equal(t, http.StatusCreated, status, "create offer: %v", body)
	offer := data(t, body)["offer"].(map[string]any)
	return offer["id"].(string)
}

func data(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	d, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "envelope without data: %v", envelope)
	return d
}

func fieldErrors(envelope map[string]any) map[string]any {
	errs, _ := envelope["errors"].(map[string]any)
	return errs
}

func userID(t *testing.T, envelope map[string]any) string {
	t.Helper()
	user, ok := data(t, envelope)["user"].(map[string]any)
	require.True(t, ok, "envelope without user: %v", envelope)
	return user["id"].(string)
}
