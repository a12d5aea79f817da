package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/services/lifecycle"
	"github.com/talentlane/marketplace_be/internal/services/ratelimit"
	"github.com/talentlane/marketplace_be/internal/store"
)

type ProposalHandler struct {
	Store     *store.Store
	Lifecycle *lifecycle.Service
	Guard     *ratelimit.Guard
	Logger    *zap.Logger
}

func NewProposalHandler(st *store.Store, lc *lifecycle.Service, guard *ratelimit.Guard, logger *zap.Logger) *ProposalHandler {
	return &ProposalHandler{Store: st, Lifecycle: lc, Guard: guard, Logger: logger}
}

type SubmitProposalRequest struct {
	CoverLetter string         `json:"cover_letter"`
	Rate        string         `json:"rate"`
	Milestones  []MilestoneReq `json:"milestones"`
}

type ProposalResponse struct {
	ID             string             `json:"id"`
	JobID          string             `json:"job_id"`
	FreelancerID   string             `json:"freelancer_id"`
	FreelancerName string             `json:"freelancer_name,omitempty"`
	CoverLetter    string             `json:"cover_letter"`
	Rate           string             `json:"rate"`
	Status         string             `json:"status"`
	Milestones     []models.Milestone `json:"milestones"`
	SubmittedAt    time.Time          `json:"submitted_at"`
}

func toProposalResponse(p *models.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:             p.ID,
		JobID:          p.JobID,
		FreelancerID:   p.FreelancerID,
		FreelancerName: p.FreelancerName,
		CoverLetter:    p.CoverLetter,
		Rate:           p.Rate,
		Status:         string(p.Status),
		Milestones:     p.Milestones,
		SubmittedAt:    p.SubmittedAt,
	}
}

// Submit files a proposal on a job for the authenticated freelancer.
func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	act, name := actor(c)

	if err := h.Guard.CheckProposal(c.Context(), act.ID); err != nil {
		return fail(c, err)
	}

	var req SubmitProposalRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	errors := FieldErrors{}
	milestones := parseMilestones(req.Milestones, errors)
	if len(errors) > 0 {
		return validationFail(c, errors)
	}

	proposal, err := h.Lifecycle.SubmitProposal(act, c.Params("id"), name, req.CoverLetter, req.Rate, milestones)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Guard.RecordProposal(c.Context(), act.ID); err != nil {
		h.Logger.Error("record proposal", zap.String("user_id", act.ID), zap.Error(err))
	}

	h.Logger.Info("proposal submitted",
		zap.String("proposal_id", proposal.ID),
		zap.String("job_id", proposal.JobID),
		zap.String("freelancer_id", act.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    toProposalResponse(proposal),
	})
}

// ListForJob returns the proposals on a job the client owns.
func (h *ProposalHandler) ListForJob(c *fiber.Ctx) error {
	act, _ := actor(c)

	job := h.Store.GetJob(c.Params("id"))
	if job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}
	if job.ClientID != act.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": "You can only view proposals for your own jobs",
		})
	}

	proposals := h.Store.GetJobProposals(job.ID)
	out := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		out = append(out, toProposalResponse(&proposals[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

// ListMine returns the authenticated freelancer's proposals.
func (h *ProposalHandler) ListMine(c *fiber.Ctx) error {
	act, _ := actor(c)
	proposals := h.Store.GetUserProposals(act.ID)
	out := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		out = append(out, toProposalResponse(&proposals[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

func (h *ProposalHandler) Accept(c *fiber.Ctx) error {
	act, _ := actor(c)

	proposal, err := h.Lifecycle.AcceptProposal(act, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	h.Logger.Info("proposal accepted",
		zap.String("proposal_id", proposal.ID),
		zap.String("job_id", proposal.JobID),
		zap.String("client_id", act.ID),
	)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProposalResponse(proposal),
	})
}

func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	act, _ := actor(c)

	proposal, err := h.Lifecycle.RejectProposal(act, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProposalResponse(proposal),
	})
}
