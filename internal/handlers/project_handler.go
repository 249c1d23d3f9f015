package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/middleware"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
)

type ProjectHandler struct {
	DB *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{DB: db}
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	var projects []models.Project
	err := h.DB.
		Preload("Category").
		Preload("Client").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Project list", fiber.Map{"projects": projects})
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	project, err := h.find(c, true)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}
	return respond(c, fiber.StatusOK, "Project details", fiber.Map{"project": project})
}

type CreateProjectReq struct {
	Name        string   `json:"name" validate:"required,min=2,max=150"`
	Description string   `json:"description" validate:"max=5000"`
	Budget      *float64 `json:"budget" validate:"omitempty,gte=0"`
	Status      string   `json:"status" validate:"max=50"`
	ImageURL    string   `json:"image_url" validate:"max=255"`
	CategoryID  uint     `json:"category_id" validate:"required"`
}

func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var req CreateProjectReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpProjectCreate, nil); !d.Allowed {
		return denied(c, d)
	}

	if err := h.DB.First(&models.Category{}, req.CategoryID).Error; err != nil {
		errs := FieldErrors{}
		errs.Add("category_id", "Selected category does not exist")
		return validationFail(c, errs)
	}

	status := req.Status
	if status == "" {
		status = models.ProjectStatusOpen
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Budget:      req.Budget,
		Status:      status,
		ImageURL:    req.ImageURL,
		ClientID:    principal.ID,
		CategoryID:  req.CategoryID,
	}
	if err := h.DB.Create(&project).Error; err != nil {
		return serverError(c, err)
	}

	if err := h.reload(&project); err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Project created", fiber.Map{"project": project})
}

type UpdateProjectReq struct {
	Name        Optional[string]  `json:"name"`
	Description Optional[string]  `json:"description"`
	Budget      Optional[float64] `json:"budget"`
	Status      Optional[string]  `json:"status"`
	ImageURL    Optional[string]  `json:"image_url"`
	CategoryID  Optional[uint]    `json:"category_id"`
}

// Update applies only the fields present in the body. Absent fields are
// no-ops; explicit null clears the nullable ones.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	project, err := h.find(c, false)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpProjectUpdate, project); !d.Allowed {
		return denied(c, d)
	}

	var req UpdateProjectReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	errs := FieldErrors{}

	if req.Name.Set {
		if !req.Name.Valid {
			errs.Add("name", "This field cannot be null")
		} else if len(req.Name.Value) < 2 || len(req.Name.Value) > 150 {
			errs.Add("name", "Must be between 2 and 150 characters")
		} else {
			project.Name = req.Name.Value
		}
	}
	if req.Description.Set {
		if !req.Description.Valid {
			project.Description = ""
		} else if len(req.Description.Value) > 5000 {
			errs.Add("description", "Must be at most 5000 characters")
		} else {
			project.Description = req.Description.Value
		}
	}
	if req.Budget.Set {
		if !req.Budget.Valid {
			project.Budget = nil
		} else if req.Budget.Value < 0 {
			errs.Add("budget", "Must be greater than or equal to 0")
		} else {
			v := req.Budget.Value
			project.Budget = &v
		}
	}
	if req.Status.Set {
		if !req.Status.Valid {
			project.Status = ""
		} else if len(req.Status.Value) > 50 {
			errs.Add("status", "Must be at most 50 characters")
		} else {
			project.Status = req.Status.Value
		}
	}
	if req.ImageURL.Set {
		if !req.ImageURL.Valid {
			project.ImageURL = ""
		} else if len(req.ImageURL.Value) > 255 {
			errs.Add("image_url", "Must be at most 255 characters")
		} else {
			project.ImageURL = req.ImageURL.Value
		}
	}
	if req.CategoryID.Set {
		if !req.CategoryID.Valid {
			errs.Add("category_id", "This field cannot be null")
		} else if err := h.DB.First(&models.Category{}, req.CategoryID.Value).Error; err != nil {
			errs.Add("category_id", "Selected category does not exist")
		} else {
			project.CategoryID = req.CategoryID.Value
		}
	}

	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	if err := h.DB.Save(project).Error; err != nil {
		return serverError(c, err)
	}

	if err := h.reload(project); err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Project updated", fiber.Map{"project": project})
}

// Delete removes the project; its offers and reviews go with it via the
// store's cascade rules.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	project, err := h.find(c, false)
	if err != nil {
		return notFoundOr(c, err, "Project not found")
	}

	principal := middleware.PrincipalFrom(c)
	if d := policy.Authorize(principal, policy.OpProjectDelete, project); !d.Allowed {
		return denied(c, d)
	}

	if err := h.DB.Delete(project).Error; err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Project deleted", nil)
}

func (h *ProjectHandler) find(c *fiber.Ctx, withRelations bool) (*models.Project, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	q := h.DB
	if withRelations {
		q = q.Preload("Category").Preload("Client")
	}

	var project models.Project
	if err := q.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (h *ProjectHandler) reload(project *models.Project) error {
	return h.DB.
		Preload("Category").
		Preload("Client").
		First(project, "id = ?", project.ID).Error
}

// findProject is shared by the offer and review handlers for the
// /projects/:id/... routes.
func findProject(gdb *gorm.DB, c *fiber.Ctx) (*models.Project, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var project models.Project
	if err := gdb.First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}
