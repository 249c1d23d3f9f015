package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/middleware"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
)

type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

func (h *CategoryHandler) List(c *fiber.Ctx) error {
	var categories []models.Category
	if err := h.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Category list", fiber.Map{"categories": categories})
}

type CategoryReq struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var req CategoryReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpCategoryCreate, nil); !d.Allowed {
		return denied(c, d)
	}

	category := models.Category{Name: req.Name}
	if err := h.DB.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs := FieldErrors{}
			errs.Add("name", "Category name is already taken")
			return conflict(c, "Category name is already taken", errs)
		}
		return serverError(c, err)
	}

	return respond(c, fiber.StatusCreated, "Category created", fiber.Map{"category": category})
}

func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	category, err := h.find(c)
	if err != nil {
		return notFoundOr(c, err, "Category not found")
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpCategoryUpdate, nil); !d.Allowed {
		return denied(c, d)
	}

	var req CategoryReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	category.Name = req.Name
	if err := h.DB.Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs := FieldErrors{}
			errs.Add("name", "Category name is already taken")
			return conflict(c, "Category name is already taken", errs)
		}
		return serverError(c, err)
	}

	return respond(c, fiber.StatusOK, "Category updated", fiber.Map{"category": category})
}

// Delete refuses while any project references the category; the restrict
// FK is what actually blocks it.
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	category, err := h.find(c)
	if err != nil {
		return notFoundOr(c, err, "Category not found")
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpCategoryDelete, nil); !d.Allowed {
		return denied(c, d)
	}

	if err := h.DB.Delete(category).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			errs := FieldErrors{}
			errs.Add("category", "Category is still referenced by projects")
			return conflict(c, "Category is still referenced by projects", errs)
		}
		return serverError(c, err)
	}

	return respond(c, fiber.StatusOK, "Category deleted", nil)
}

func (h *CategoryHandler) find(c *fiber.Ctx) (*models.Category, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
