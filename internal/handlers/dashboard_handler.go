package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/store"
)

type DashboardHandler struct {
	Store *store.Store
}

func NewDashboardHandler(st *store.Store) *DashboardHandler {
	return &DashboardHandler{Store: st}
}

// Get returns the role-appropriate dashboard: clients see their
// postings with incoming proposals, freelancers see their proposals
// and the jobs their accepted proposals put them on.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	act, _ := actor(c)

	var jobs []models.Job
	proposals := h.Store.GetUserProposals(act.ID)

	switch act.Role {
	case models.RoleClient:
		jobs = h.Store.GetClientJobs(act.ID)
	case models.RoleFreelancer:
		for _, p := range proposals {
			if p.Status != models.ProposalAccepted {
				continue
			}
			if job := h.Store.GetJob(p.JobID); job != nil {
				jobs = append(jobs, *job)
			}
		}
	}

	jobViews := make([]JobResponse, 0, len(jobs))
	active := 0
	completed := 0
	for i := range jobs {
		view := toJobResponse(&jobs[i])
		if view.Status == models.JobCompleted {
			completed++
		} else {
			active++
		}
		jobViews = append(jobViews, view)
	}

	proposalViews := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		proposalViews = append(proposalViews, toProposalResponse(&proposals[i]))
	}

	incoming := []ProposalResponse{}
	if act.Role == models.RoleClient {
		for i := range jobs {
			for _, p := range h.Store.GetJobProposals(jobs[i].ID) {
				incoming = append(incoming, toProposalResponse(&p))
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"stats": fiber.Map{
				"active_jobs":    active,
				"completed_jobs": completed,
				"proposals":      len(proposals),
			},
			"jobs":               jobViews,
			"proposals":          proposalViews,
			"incoming_proposals": incoming,
		},
	})
}
