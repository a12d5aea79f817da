package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/services/lifecycle"
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

// actor pulls the authenticated user out of the request locals set by
// the JWT middleware.
func actor(c *fiber.Ctx) (lifecycle.Actor, string) {
	uid, _ := c.Locals("userId").(string)
	role, _ := c.Locals("role").(string)
	name, _ := c.Locals("userName").(string)
	return lifecycle.Actor{ID: uid, Role: models.Role(role)}, name
}

// fail maps service errors onto the response envelope. Status-coded
// errors keep their code, everything else is a 500.
func fail(c *fiber.Ctx, err error) error {
	if e, ok := err.(*models.ErrorResponse); ok {
		return c.Status(e.StatusCode).JSON(fiber.Map{
			"success": false,
			"message": e.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}
