package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/middleware"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
)

type MetricsHandler struct {
	DB *gorm.DB
}

func NewMetricsHandler(db *gorm.DB) *MetricsHandler {
	return &MetricsHandler{DB: db}
}

type StatusCount struct {
	Status string `json:"status"`
	Total  int64  `json:"total"`
}

type CategoryRank struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	ProjectsCount int64  `json:"projects_count"`
}

type FreelancerRank struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	AvgGrade     float64   `json:"avg_grade"`
	ReviewsCount int64     `json:"reviews_count"`
}

type ClientRank struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ProjectsCount int64     `json:"projects_count"`
}

// Dashboard computes the admin rollups. Stored values stay raw; averages
// are rounded to 2 decimals only here, at the output boundary.
func (h *MetricsHandler) Dashboard(c *fiber.Ctx) error {
	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpMetricsView, nil); !d.Allowed {
		return denied(c, d)
	}

	// users, grouped by role in one pass
	var userRows []struct {
		Role  string
		Total int64
	}
	err := h.DB.Model(&models.User{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&userRows).Error
	if err != nil {
		return serverError(c, err)
	}
	usersByRole := map[string]int64{}
	var totalUsers int64
	for _, row := range userRows {
		usersByRole[row.Role] = row.Total
		totalUsers += row.Total
	}

	// projects
	var totalProjects int64
	if err := h.DB.Model(&models.Project{}).Count(&totalProjects).Error; err != nil {
		return serverError(c, err)
	}
	projectsByStatus := make([]StatusCount, 0)
	err = h.DB.Model(&models.Project{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Order("total DESC, status ASC").
		Scan(&projectsByStatus).Error
	if err != nil {
		return serverError(c, err)
	}

	// offers
	var totalOffers int64
	if err := h.DB.Model(&models.Offer{}).Count(&totalOffers).Error; err != nil {
		return serverError(c, err)
	}
	var avgOfferPrice float64
	err = h.DB.Model(&models.Offer{}).
		Select("COALESCE(AVG(price), 0)").
		Scan(&avgOfferPrice).Error
	if err != nil {
		return serverError(c, err)
	}
	offersByStatus := make([]StatusCount, 0)
	err = h.DB.Model(&models.Offer{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Order("total DESC, status ASC").
		Scan(&offersByStatus).Error
	if err != nil {
		return serverError(c, err)
	}

	// reviews
	var totalReviews int64
	if err := h.DB.Model(&models.Review{}).Count(&totalReviews).Error; err != nil {
		return serverError(c, err)
	}
	var avgReviewGrade float64
	err = h.DB.Model(&models.Review{}).
		Select("COALESCE(AVG(grade), 0)").
		Scan(&avgReviewGrade).Error
	if err != nil {
		return serverError(c, err)
	}

	// top categories by project count; left join keeps empty categories in
	topCategories := make([]CategoryRank, 0)
	err = h.DB.Table("categories").
		Joins("LEFT JOIN projects ON projects.category_id = categories.id").
		Select("categories.id, categories.name, COUNT(projects.id) AS projects_count").
		Group("categories.id, categories.name").
		Order("projects_count DESC, categories.id ASC").
		Limit(5).
		Scan(&topCategories).Error
	if err != nil {
		return serverError(c, err)
	}

	// top freelancers by average grade, ties by review count
	topByGrade := make([]FreelancerRank, 0)
	err = h.DB.Table("users").
		Joins("JOIN reviews ON reviews.freelancer_id = users.id").
		Where("users.role = ?", models.RoleFreelancer).
		Select("users.id, users.name, AVG(reviews.grade) AS avg_grade, COUNT(reviews.id) AS reviews_count").
		Group("users.id, users.name").
		Order("avg_grade DESC, reviews_count DESC").
		Limit(5).
		Scan(&topByGrade).Error
	if err != nil {
		return serverError(c, err)
	}
	for i := range topByGrade {
		topByGrade[i].AvgGrade = round2(topByGrade[i].AvgGrade)
	}

	// top freelancers by review count, ties by average grade
	topByReviews := make([]FreelancerRank, 0)
	err = h.DB.Table("users").
		Joins("JOIN reviews ON reviews.freelancer_id = users.id").
		Where("users.role = ?", models.RoleFreelancer).
		Select("users.id, users.name, AVG(reviews.grade) AS avg_grade, COUNT(reviews.id) AS reviews_count").
		Group("users.id, users.name").
		Order("reviews_count DESC, avg_grade DESC").
		Limit(5).
		Scan(&topByReviews).Error
	if err != nil {
		return serverError(c, err)
	}
	for i := range topByReviews {
		topByReviews[i].AvgGrade = round2(topByReviews[i].AvgGrade)
	}

	// top clients by owned projects, ties by account age
	topClients := make([]ClientRank, 0)
	err = h.DB.Table("users").
		Joins("JOIN projects ON projects.client_id = users.id").
		Where("users.role = ?", models.RoleClient).
		Select("users.id, users.name, COUNT(projects.id) AS projects_count").
		Group("users.id, users.name, users.created_at").
		Order("projects_count DESC, users.created_at ASC").
		Limit(5).
		Scan(&topClients).Error
	if err != nil {
		return serverError(c, err)
	}

	metrics := fiber.Map{
		"users": fiber.Map{
			"total":       totalUsers,
			"clients":     usersByRole[string(models.RoleClient)],
			"freelancers": usersByRole[string(models.RoleFreelancer)],
			"admins":      usersByRole[string(models.RoleAdmin)],
		},
		"projects": fiber.Map{
			"total":     totalProjects,
			"by_status": projectsByStatus,
		},
		"offers": fiber.Map{
			"total":     totalOffers,
			"avg_price": round2(avgOfferPrice),
			"by_status": offersByStatus,
		},
		"reviews": fiber.Map{
			"total":     totalReviews,
			"avg_grade": round2(avgReviewGrade),
		},
		"top": fiber.Map{
			"categories_by_projects": topCategories,
			"freelancers_by_grade":   topByGrade,
			"freelancers_by_reviews": topByReviews,
			"clients_by_projects":    topClients,
		},
	}

	return respond(c, fiber.StatusOK, "Dashboard metrics", fiber.Map{"metrics": metrics})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
