package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/middleware"
	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
	"github.com/itfreelance/api/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int // minutes
}

func NewAuthHandler(db *gorm.DB, secret string, expiresMin int) *AuthHandler {
	return &AuthHandler{DB: db, JWTSecret: secret, Expires: expiresMin}
}

type RegisterReq struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email,max=150"`
	Password    string `json:"password" validate:"required,min=6,max=255"`
	Role        string `json:"role" validate:"required,oneof=client freelancer"`
	Description string `json:"description" validate:"max=2000"`
	Skills      string `json:"skills" validate:"max=2000"`
	ImageURL    string `json:"image_url" validate:"max=255"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	// pre-check for a friendlier message; the unique index is the authority
	var existing models.User
	err := h.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		errs := FieldErrors{}
		errs.Add("email", "Email is already registered")
		return conflict(c, "Email is already registered", errs)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return serverError(c, err)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return serverError(c, err)
	}

	user := models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hashed,
		Role:        models.Role(req.Role),
		Status:      models.StatusActive,
		Description: req.Description,
		Skills:      req.Skills,
		ImageURL:    req.ImageURL,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs := FieldErrors{}
			errs.Add("email", "Email is already registered")
			return conflict(c, "Email is already registered", errs)
		}
		return serverError(c, err)
	}

	token, err := h.issueToken(&user)
	if err != nil {
		return serverError(c, err)
	}

	return respond(c, fiber.StatusCreated, "Registration successful", fiber.Map{
		"user":  user,
		"token": token,
	})
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,max=255"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if errs := validateStruct(req); errs != nil {
		return validationFail(c, errs)
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if !utils.CheckPassword(user.Password, req.Password) {
		return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
	}

	if d := policy.CanLogin(&user); !d.Allowed {
		return denied(c, d)
	}

	token, err := h.issueToken(&user)
	if err != nil {
		return serverError(c, err)
	}

	return respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Logout revokes the presented credential only; other sessions of the
// same user stay valid.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	tokenID := middleware.TokenIDFrom(c)
	if err := h.DB.Delete(&models.AccessToken{}, "id = ?", tokenID).Error; err != nil {
		return serverError(c, err)
	}
	return respond(c, fiber.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.UserFrom(c)
	if user == nil {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}
	return respond(c, fiber.StatusOK, "Current user", fiber.Map{"user": user})
}

// issueToken signs a fresh credential and records its hash so it can be
// revoked on its own.
func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	tokenID := uuid.New()
	signed, err := utils.SignJWT(h.JWTSecret, user.ID.String(), string(user.Role), tokenID.String(), h.Expires)
	if err != nil {
		return "", err
	}

	record := models.AccessToken{
		ID:        tokenID,
		UserID:    user.ID,
		TokenHash: middleware.HashToken(signed),
		ExpiresAt: time.Now().Add(time.Duration(h.Expires) * time.Minute),
	}
	if err := h.DB.Create(&record).Error; err != nil {
		return "", err
	}
	return signed, nil
}
