package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/policy"
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func failWithErrors(c *fiber.Ctx, status int, message string, errs FieldErrors) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"errors":  errs,
	})
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return failWithErrors(c, fiber.StatusUnprocessableEntity, "Validation error", errs)
}

func conflict(c *fiber.Ctx, message string, errs FieldErrors) error {
	return failWithErrors(c, fiber.StatusConflict, message, errs)
}

// denied maps a policy decision onto the transport. Reasons stay
// distinguishable in the message even though several share a status.
func denied(c *fiber.Ctx, d policy.Decision) error {
	switch d.Reason {
	case policy.DenyUnauthenticated:
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	case policy.DenyOwnershipMismatch:
		return fail(c, fiber.StatusForbidden, "You can only manage your own resources")
	case policy.DenyInactiveAccount:
		return fail(c, fiber.StatusForbidden, "Account is not active")
	default:
		return fail(c, fiber.StatusForbidden, "Insufficient role for this operation")
	}
}

// notFoundOr answers 404 only for a missing record; any other lookup
// failure is a store error and must not masquerade as "not found".
func notFoundOr(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, fiber.StatusNotFound, message)
	}
	return serverError(c, err)
}

func serverError(c *fiber.Ctx, err error) error {
	log.Printf("store error: %v", err)
	return fail(c, fiber.StatusInternalServerError, "Something went wrong")
}
