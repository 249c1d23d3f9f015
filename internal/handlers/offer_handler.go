package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/middleware"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
)

type OfferHandler struct {
	DB *gorm.DB
}

func NewOfferHandler(db *gorm.DB) *OfferHandler {
	return &OfferHandler{DB: db}
}

func (h *OfferHandler) ListByProject(c *fiber.Ctx) error {
	project, err := findProject(h.DB, c)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}

	var offers []models.Offer
	err = h.DB.
		Preload("Freelancer").
		Where("project_id = ?", project.ID).
		Order("created_at DESC").
		Find(&offers).Error
	if err != nil {
		return serverError(c, err)
	}

	return respond(c, fiber.StatusOK, "Offer list for project", fiber.Map{
		"project_id": project.ID,
		"offers":     offers,
	})
}

type CreateOfferReq struct {
	Price   *float64 `json:"price" validate:"required,gte=0"`
	Comment string   `json:"comment" validate:"max=3000"`
}

func (h *OfferHandler) Create(c *fiber.Ctx) error {
	project, err := findProject(h.DB, c)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}

	var req CreateOfferReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpOfferCreate, nil); !d.Allowed {
		return denied(c, d)
	}

	offer := models.Offer{
		Price:        *req.Price,
		Comment:      req.Comment,
		Status:       models.OfferStatusPending,
		DateAndTime:  time.Now(),
		FreelancerID: principal.ID,
		ProjectID:    project.ID,
	}
	if err := h.DB.Create(&offer).Error; err != nil {
		return serverError(c, err)
	}

	if err := h.reload(&offer); err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Offer submitted", fiber.Map{"offer": offer})
}

type UpdateOfferReq struct {
	Price   Optional[float64] `json:"price"`
	Comment Optional[string]  `json:"comment"`
}

// Update lets the owning freelancer adjust price and comment; status is
// not touched here.
func (h *OfferHandler) Update(c *fiber.Ctx) error {
	offer, err := h.find(c)
	if err != nil {
		return notFoundOr(c, err, "Offer not found")
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpOfferUpdate, offer); !d.Allowed {
		return denied(c, d)
	}

	var req UpdateOfferReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs := FieldErrors{}

	if req.Price.Set {
		if !req.Price.Valid {
			errs.Add("price", "This field cannot be null")
		} else if req.Price.Value < 0 {
			errs.Add("price", "Must be greater than or equal to 0")
		} else {
			offer.Price = req.Price.Value
		}
	}
	if req.Comment.Set {
		if !req.Comment.Valid {
			offer.Comment = ""
		} else if len(req.Comment.Value) > 3000 {
			errs.Add("comment", "Must be at most 3000 characters")
		} else {
			offer.Comment = req.Comment.Value
		}
	}

	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	if err := h.DB.Save(offer).Error; err != nil {
		return serverError(c, err)
	}

	if err := h.reload(offer); err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Offer updated", fiber.Map{"offer": offer})
}

func (h *OfferHandler) Delete(c *fiber.Ctx) error {
	offer, err := h.find(c)
	if err != nil {
		return notFoundOr(c, err, "Offer not found")
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpOfferDelete, offer); !d.Allowed {
		return denied(c, d)
	}

	if err := h.DB.Delete(offer).Error; err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Offer deleted", nil)
}

func (h *OfferHandler) find(c *fiber.Ctx) (*models.Offer, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var offer models.Offer
	if err := h.DB.First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (h *OfferHandler) reload(offer *models.Offer) error {
	return h.DB.
		Preload("Freelancer").
		Preload("Project").
		First(offer, "id = ?", offer.ID).Error
}
