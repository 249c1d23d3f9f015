package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRequireAdmin(t *testing.T) {
	e := newTestEnv(t)
	client := e.register(t, "Ana", "ana@example.com", "client")
	freelancer := e.register(t, "Bojan", "bojan@example.com", "freelancer")

	for _, token := range []string{client, freelancer} {
		status, _ := e.do(t, fiber.MethodGet, "/api/metrics/dashboard", token, nil)
		assert.Equal(t, http.StatusForbidden, status)
	}

	status, _ := e.do(t, fiber.MethodGet, "/api/metrics/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestMetricsEmptyStore(t *testing.T) {
	e := newTestEnv(t)
	admin := e.seedAdmin(t, "admin@example.com")

	status, body := e.do(t, fiber.MethodGet, "/api/metrics/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, status)
	metrics := data(t, body)["metrics"].(map[string]any)

	users := metrics["users"].(map[string]any)
	assert.Equal(t, 1.0, users["total"])
	assert.Equal(t, 1.0, users["admins"])
	assert.Equal(t, 0.0, users["clients"])

	offers := metrics["offers"].(map[string]any)
	assert.Equal(t, 0.0, offers["total"])
	assert.Equal(t, 0.0, offers["avg_price"])

	reviews := metrics["reviews"].(map[string]any)
	assert.Equal(t, 0.0, reviews["avg_grade"])

	top := metrics["top"].(map[string]any)
	assert.Empty(t, top["categories_by_projects"])
	assert.Empty(t, top["freelancers_by_grade"])
}

func TestMetricsRollups(t *testing.T) {
	e := newTestEnv(t)
	admin := e.seedAdmin(t, "admin@example.com")
	client := e.register(t, "Ana", "ana@example.com", "client")
	first, firstID := registerWithID(t, e, "Bojan", "bojan@example.com", "freelancer")
	second, secondID := registerWithID(t, e, "Dara", "dara@example.com", "freelancer")

	webID := e.createCategory(t, admin, "Web")
	e.createCategory(t, admin, "Design")

	projectID := e.createProject(t, client, "Portfolio site", webID, nil)
	e.createOffer(t, first, projectID, 100)
	e.createOffer(t, second, projectID, 101)

	for _, r := range []struct {
		freelancerID string
		grade        int
	}{
		{firstID, 5},
		{secondID, 4},
	} {
		status, _ := e.do(t, fiber.MethodPost, "/api/projects/"+projectID+"/reviews", client, map[string]any{
			"freelancer_id": r.freelancerID,
			"grade":         r.grade,
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := e.do(t, fiber.MethodGet, "/api/metrics/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, status)
	metrics := data(t, body)["metrics"].(map[string]any)

	users := metrics["users"].(map[string]any)
	assert.Equal(t, 4.0, users["total"])
	assert.Equal(t, 1.0, users["clients"])
	assert.Equal(t, 2.0, users["freelancers"])
	assert.Equal(t, 1.0, users["admins"])

	projects := metrics["projects"].(map[string]any)
	assert.Equal(t, 1.0, projects["total"])
	byStatus := projects["by_status"].([]any)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "open", byStatus[0].(map[string]any)["status"])

	offers := metrics["offers"].(map[string]any)
	assert.Equal(t, 2.0, offers["total"])
	assert.Equal(t, 100.5, offers["avg_price"])

	reviews := metrics["reviews"].(map[string]any)
	assert.Equal(t, 2.0, reviews["total"])
	assert.Equal(t, 4.5, reviews["avg_grade"])
}

func TestMetricsTopRankings(t *testing.T) {
	e := newTestEnv(t)
	admin := e.seedAdmin(t, "admin@example.com")
	client := e.register(t, "Ana", "ana@example.com", "client")
	best, bestID := registerWithID(t, e, "Bojan", "bojan@example.com", "freelancer")
	busy, busyID := registerWithID(t, e, "Dara", "dara@example.com", "freelancer")

	webID := e.createCategory(t, admin, "Web")
	designID := e.createCategory(t, admin, "Design")
	e.createCategory(t, admin, "Empty")

	// two projects in Web, one in Design
	p1 := e.createProject(t, client, "First", webID, nil)
	p2 := e.createProject(t, client, "Second", webID, nil)
	p3 := e.createProject(t, client, "Third", designID, nil)

	// best: one review with grade 5; busy: two reviews averaging 4
	e.createOffer(t, best, p1, 500)
	e.createOffer(t, busy, p2, 400)
	e.createOffer(t, busy, p3, 300)

	for _, r := range []struct {
		project      string
		freelancerID string
		grade        int
	}{
		{p1, bestID, 5},
		{p2, busyID, 4},
		{p3, busyID, 4},
	} {
		status, _ := e.do(t, fiber.MethodPost, "/api/projects/"+r.project+"/reviews", client, map[string]any{
			"freelancer_id": r.freelancerID,
			"grade":         r.grade,
		})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body := e.do(t, fiber.MethodGet, "/api/metrics/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, status)
	top := data(t, body)["metrics"].(map[string]any)["top"].(map[string]any)

	// most projects first; a category with none still shows up
	categories := top["categories_by_projects"].([]any)
	require.Len(t, categories, 3)
	assert.Equal(t, "Web", categories[0].(map[string]any)["name"])
	assert.Equal(t, 2.0, categories[0].(map[string]any)["projects_count"])
	assert.Equal(t, 0.0, categories[2].(map[string]any)["projects_count"])

	// highest average grade first
	byGrade := top["freelancers_by_grade"].([]any)
	require.Len(t, byGrade, 2)
	assert.Equal(t, "Bojan", byGrade[0].(map[string]any)["name"])
	assert.Equal(t, 5.0, byGrade[0].(map[string]any)["avg_grade"])
	assert.Equal(t, 4.0, byGrade[1].(map[string]any)["avg_grade"])

	// most reviews first
	byReviews := top["freelancers_by_reviews"].([]any)
	require.Len(t, byReviews, 2)
	assert.Equal(t, "Dara", byReviews[0].(map[string]any)["name"])
	assert.Equal(t, 2.0, byReviews[0].(map[string]any)["reviews_count"])

	clients := top["clients_by_projects"].([]any)
	require.Len(t, clients, 1)
	assert.Equal(t, "Ana", clients[0].(map[string]any)["name"])
	assert.Equal(t, 3.0, clients[0].(map[string]any)["projects_count"])
}
