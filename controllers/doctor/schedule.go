package doctor

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/availability"
	"github.com/carewell/health-portal/utils"
)

// controllerFor returns the availability controller for the signed-in
// doctor, loading it on first use.
func controllerFor(c *fiber.Ctx) (*availability.Controller, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, errors.New("user ID not found in context")
	}
	return availability.Doctors.Get(c.Context(), userID)
}

func availabilityError(c *fiber.Ctx, err error) error {
	var availErr *availability.Error
	if errors.As(err, &availErr) {
		status := fiber.StatusBadRequest
		if availErr.Code == availability.CodeScheduleExists {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(utils.ErrorResponse{
			Message: availErr.Message,
			Error:   availErr.Message,
			Code:    availErr.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// GetScheduleStatus returns today's schedule, the machine state, and any
// pending prompt. A tick runs first so the response reflects the current
// clock even between monitor sweeps.
func GetScheduleStatus(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	ctrl.Tick(c.Context())
	return c.JSON(ctrl.Status())
}

// SetSchedule creates or replaces today's schedule
func SetSchedule(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var input availability.SetScheduleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := ctrl.SetSchedule(c.Context(), input); err != nil {
		return availabilityError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ctrl.Status())
}

// GoOnline marks the doctor as accepting appointments
func GoOnline(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := ctrl.GoOnline(c.Context()); err != nil {
		return availabilityError(c, err)
	}

	return c.JSON(ctrl.Status())
}

// GoOffline marks the doctor as not accepting appointments
func GoOffline(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := ctrl.GoOffline(c.Context()); err != nil {
		return availabilityError(c, err)
	}

	return c.JSON(ctrl.Status())
}

// ExtendSchedule pushes today's end time forward by N hours
func ExtendSchedule(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	type ExtendInput struct {
		Hours int `json:"hours"`
	}
	input := new(ExtendInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := ctrl.Extend(c.Context(), input.Hours); err != nil {
		return availabilityError(c, err)
	}

	return c.JSON(ctrl.Status())
}

// UpdateBreak changes or clears the break on today's schedule. Omitting
// both times disables the break.
func UpdateBreak(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	type BreakInput struct {
		BreakStart *string `json:"break_start"`
		BreakEnd   *string `json:"break_end"`
	}
	input := new(BreakInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := ctrl.UpdateBreak(c.Context(), input.BreakStart, input.BreakEnd); err != nil {
		return availabilityError(c, err)
	}

	return c.JSON(ctrl.Status())
}

// AcknowledgePrompt clears the pending schedule prompt
func AcknowledgePrompt(c *fiber.Ctx) error {
	ctrl, err := controllerFor(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	ctrl.ClearPrompt()
	return c.JSON(fiber.Map{
		"message": "Prompt acknowledged",
	})
}
