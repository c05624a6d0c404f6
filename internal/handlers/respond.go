package handlers

import (
	"fmt"

	"boutique/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// fail maps a service error onto its HTTP status with the standard envelope.
func fail(c *fiber.Ctx, message string, err error) error {
	return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// validationFail renders validator errors field by field.
func validationFail(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
