package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/models"
	"github.com/itfreelance/api/internal/policy"
	"github.com/itfreelance/api/internal/utils"
)

const (
	localPrincipal = "principal"
	localUser      = "currentUser"
	localTokenID   = "tokenId"
)

// HashToken is the stored form of a credential; the raw token never
// touches the database.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

// RequireAuth resolves the bearer credential to an explicit principal.
// A credential is live only while its signature verifies AND its
// access_tokens row exists; logout deletes the row.
func RequireAuth(gdb *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return unauthorized(c, "Missing bearer credential")
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if raw == "" {
			return unauthorized(c, "Missing bearer credential")
		}

		if _, err := utils.ParseJWT(secret, raw); err != nil {
			return unauthorized(c, "Invalid or expired credential")
		}

		var token models.AccessToken
		if err := gdb.Where("token_hash = ?", HashToken(raw)).First(&token).Error; err != nil {
			return unauthorized(c, "Invalid or expired credential")
		}
		if time.Now().After(token.ExpiresAt) {
			return unauthorized(c, "Invalid or expired credential")
		}

		var user models.User
		if err := gdb.First(&user, "id = ?", token.UserID).Error; err != nil {
			return unauthorized(c, "Invalid or expired credential")
		}
		if user.Status != models.StatusActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Account is not active",
			})
		}

		c.Locals(localPrincipal, &policy.Principal{ID: user.ID, Role: user.Role, Status: user.Status})
		c.Locals(localUser, &user)
		c.Locals(localTokenID, token.ID)
		return c.Next()
	}
}

// PrincipalFrom returns the principal resolved by RequireAuth, or nil on
// public routes.
func PrincipalFrom(c *fiber.Ctx) *policy.Principal {
	p, _ := c.Locals(localPrincipal).(*policy.Principal)
	return p
}

func UserFrom(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(localUser).(*models.User)
	return u
}

// TokenIDFrom identifies the credential presented on this request, so
// logout can revoke only that one.
func TokenIDFrom(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localTokenID).(uuid.UUID)
	return id
}
