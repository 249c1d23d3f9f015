package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/middleware"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
)

type ReviewHandler struct {
	DB *gorm.DB
}

func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{DB: db}
}

func (h *ReviewHandler) ListByProject(c *fiber.Ctx) error {
	project, err := findProject(h.DB, c)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}

	var reviews []models.Review
	err = h.DB.
		Preload("Client").
		Preload("Freelancer").
		Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return serverError(c, err)
	}

	return respond(c, fiber.StatusOK, "Review list for project", fiber.Map{
		"project_id": project.ID,
		"reviews":    reviews,
	})
}

type CreateReviewReq struct {
	FreelancerID string `json:"freelancer_id" validate:"required,uuid"`
	Grade        int    `json:"grade" validate:"required,gte=1,lte=5"`
	Comment      string `json:"comment" validate:"max=3000"`
}

// Create records a client's review of a freelancer on the client's own
// project. The freelancer must hold at least one offer on the project;
// that is a precondition, not an authorization rule, so its violation is
// a conflict. The duplicate-triple race is settled by the store's unique
// index.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	project, err := findProject(h.DB, c)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}

	var req CreateReviewReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpReviewCreate, project); !d.Allowed {
		return denied(c, d)
	}

	freelancerID, _ := uuid.Parse(req.FreelancerID)
	var freelancer models.User
	if err := h.DB.First(&freelancer, "id = ?", freelancerID).Error; err != nil {
		errs := FieldErrors{}
		errs.Add("freelancer_id", "Selected freelancer does not exist")
		return validationFail(c, errs)
	}

	var offerCount int64
	err = h.DB.Model(&models.Offer{}).
		Where("project_id = ? AND freelancer_id = ?", project.ID, freelancerID).
		Count(&offerCount).Error
	if err != nil {
		return serverError(c, err)
	}
	if offerCount == 0 {
		errs := FieldErrors{}
		errs.Add("freelancer", "Freelancer has no offer on this project")
		return conflict(c, "Freelancer has no offer on this project", errs)
	}

	review := models.Review{
		Grade:        req.Grade,
		Comment:      req.Comment,
		DateAndTime:  time.Now(),
		ClientID:     principal.ID,
		FreelancerID: freelancerID,
		ProjectID:    project.ID,
	}
	if err := h.DB.Create(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs := FieldErrors{}
			errs.Add("review", "You have already reviewed this freelancer on this project")
			return conflict(c, "Review already exists", errs)
		}
		return serverError(c, err)
	}

	err = h.DB.
		Preload("Client").
		Preload("Freelancer").
		Preload("Project").
		First(&review, "id = ?", review.ID).Error
	if err != nil {
		return serverError(c, err)
	}

	return respond(c, fiber.StatusCreated, "Review added", fiber.Map{"review": review})
}
