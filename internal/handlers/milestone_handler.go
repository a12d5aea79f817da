package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/talentlane/marketplace_be/internal/services/lifecycle"
)

type MilestoneHandler struct {
	Lifecycle *lifecycle.Service
	Logger    *zap.Logger
}

func NewMilestoneHandler(lc *lifecycle.Service, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{Lifecycle: lc, Logger: logger}
}

// RequestChange flags a milestone for rework with a description of
// what should change.
func (h *MilestoneHandler) RequestChange(c *fiber.Ctx) error {
	act, _ := actor(c)

	var req struct {
		Request string `json:"request"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	job, err := h.Lifecycle.RequestChange(act, c.Params("id"), c.Params("mid"), req.Request)
	if err != nil {
		return fail(c, err)
	}

	h.Logger.Info("change requested",
		zap.String("job_id", job.ID),
		zap.String("milestone_id", c.Params("mid")),
		zap.String("user_id", act.ID),
	)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toJobResponse(job),
	})
}

// RespondToChange resolves a pending change request with the
// counter-party's response.
func (h *MilestoneHandler) RespondToChange(c *fiber.Ctx) error {
	act, _ := actor(c)

	var req struct {
		Response string `json:"response"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	job, err := h.Lifecycle.RespondToChange(act, c.Params("id"), c.Params("mid"), req.Response)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toJobResponse(job),
	})
}
