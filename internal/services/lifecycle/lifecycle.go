package lifecycle

import (
	"math"
	"net/http"
	"strings"

	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/store"
)

const (
	ResponseMinLen = 10
	ResponseMaxLen = 1000
)

// JobStatus derives a job's aggregate status from its milestones.
// A pending change request masks everything else, even a list that is
// otherwise fully completed. Evaluated on every read, never cached.
func JobStatus(milestones []models.Milestone) models.JobStatus {
	if len(milestones) == 0 {
		return models.JobNotStarted
	}

	hasChangesRequested := false
	allCompleted := true
	someInProgress := false
	for _, m := range milestones {
		if m.NeedsChanges {
			hasChangesRequested = true
		}
		if m.Status != models.MilestoneCompleted {
			allCompleted = false
		}
		if m.Status == models.MilestoneInProgress {
			someInProgress = true
		}
	}

	switch {
	case hasChangesRequested:
		return models.JobChangeRequested
	case allCompleted:
		return models.JobCompleted
	case someInProgress:
		return models.JobInProgress
	default:
		return models.JobNotStarted
	}
}

// Progress is the rounded percentage of completed milestones.
func Progress(milestones []models.Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	completed := 0
	for _, m := range milestones {
		if m.Status == models.MilestoneCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(milestones)) * 100))
}

// Actor is the authenticated user attempting a transition.
type Actor struct {
	ID   string
	Role models.Role
}

// Service enforces the proposal and milestone transitions over the
// job/proposal store.
type Service struct {
	Store *store.Store

	// ChangeRequestRole gates who may open a change request:
	// "client", "freelancer" or "any".
	ChangeRequestRole string
}

func NewService(st *store.Store, changeRequestRole string) *Service {
	return &Service{Store: st, ChangeRequestRole: changeRequestRole}
}

func notAuthenticated() error {
	return models.NewErrorResponse(http.StatusUnauthorized, "You must be logged in to perform this action")
}

// SubmitProposal drafts and stores a freelancer's bid on a job. The
// caller supplies the edited candidate milestone plan; an empty plan
// falls back to the job's own milestones with approval reset.
func (s *Service) SubmitProposal(actor Actor, jobID, freelancerName, coverLetter, rate string, milestones []models.Milestone) (*models.Proposal, error) {
	if actor.ID == "" {
		return nil, notAuthenticated()
	}
	if actor.Role != models.RoleFreelancer {
		return nil, models.NewErrorResponse(http.StatusForbidden, "Only freelancers can submit proposals")
	}

	coverLetter = strings.TrimSpace(coverLetter)
	if len(coverLetter) < models.CoverLetterMinLen {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Cover letter must be at least 50 characters")
	}
	if len(coverLetter) > models.CoverLetterMaxLen {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Cover letter must be less than 2000 characters")
	}
	if !models.ValidRate(rate) {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Please enter a valid rate format (e.g., $30/hr or $5000 fixed)")
	}

	job := s.Store.GetJob(jobID)
	if job == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Job not found")
	}
	if job.ClientID == actor.ID {
		return nil, models.NewErrorResponse(http.StatusForbidden, "You cannot submit a proposal to your own job")
	}

	for _, p := range s.Store.GetUserProposals(actor.ID) {
		if p.JobID == jobID {
			return nil, models.NewErrorResponse(http.StatusConflict, "You have already submitted a proposal for this job")
		}
	}

	proposal := models.NewProposal(job, actor.ID, freelancerName, coverLetter, rate)
	if len(milestones) > 0 {
		edited := models.CloneMilestones(milestones)
		for i := range edited {
			edited[i].Approved = false
		}
		proposal.Milestones = edited
	}
	if len(proposal.Milestones) == 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Please add at least one milestone")
	}

	total := 0.0
	for _, m := range proposal.Milestones {
		total += m.Amount
	}
	if total <= 0 {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Total milestone amount must be greater than zero")
	}

	stored := s.Store.AddProposal(proposal)
	return &stored, nil
}

// AcceptProposal replaces the job's milestones with the proposal's
// candidate plan (every milestone approved, reset to Not Started) and
// marks the proposal accepted. Both writes must land; there is no
// compensating rollback between them.
func (s *Service) AcceptProposal(actor Actor, proposalID string) (*models.Proposal, error) {
	if actor.ID == "" {
		return nil, notAuthenticated()
	}
	if actor.Role != models.RoleClient {
		return nil, models.NewErrorResponse(http.StatusForbidden, "Only clients can accept proposals")
	}

	proposal := s.Store.GetProposal(proposalID)
	if proposal == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Proposal not found")
	}

	job := s.Store.GetJob(proposal.JobID)
	if job == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Job not found")
	}
	if job.ClientID != actor.ID {
		return nil, models.NewErrorResponse(http.StatusForbidden, "You can only accept proposals for your own jobs")
	}

	for _, p := range s.Store.GetJobProposals(job.ID) {
		if p.Status == models.ProposalAccepted {
			return nil, models.NewErrorResponse(http.StatusConflict, "A proposal for this job has already been accepted")
		}
	}

	// The proposal's edited plan wins over the job's original list.
	accepted := models.CloneMilestones(proposal.Milestones)
	for i := range accepted {
		accepted[i].Approved = true
		accepted[i].Status = models.MilestoneNotStarted
		accepted[i].NeedsChanges = false
		accepted[i].ChangeRequest = nil
	}

	s.Store.UpdateJob(job.ID, store.JobPatch{Milestones: &accepted})
	status := models.ProposalAccepted
	s.Store.UpdateProposal(proposal.ID, store.ProposalPatch{Status: &status})

	return s.Store.GetProposal(proposal.ID), nil
}

// RejectProposal sets the proposal to Rejected. No other side effects.
func (s *Service) RejectProposal(actor Actor, proposalID string) (*models.Proposal, error) {
	if actor.ID == "" {
		return nil, notAuthenticated()
	}
	if actor.Role != models.RoleClient {
		return nil, models.NewErrorResponse(http.StatusForbidden, "Only clients can reject proposals")
	}

	proposal := s.Store.GetProposal(proposalID)
	if proposal == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Proposal not found")
	}

	job := s.Store.GetJob(proposal.JobID)
	if job == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Job not found")
	}
	if job.ClientID != actor.ID {
		return nil, models.NewErrorResponse(http.StatusForbidden, "You can only reject proposals for your own jobs")
	}

	status := models.ProposalRejected
	s.Store.UpdateProposal(proposal.ID, store.ProposalPatch{Status: &status})
	return s.Store.GetProposal(proposal.ID), nil
}

// RequestChange flags a milestone for rework. Approval is withdrawn
// until the counter-party responds.
func (s *Service) RequestChange(actor Actor, jobID, milestoneID, request string) (*models.Job, error) {
	if actor.ID == "" {
		return nil, notAuthenticated()
	}

	switch s.ChangeRequestRole {
	case "any":
	case "freelancer":
		if actor.Role != models.RoleFreelancer {
			return nil, models.NewErrorResponse(http.StatusForbidden, "Only freelancers can request changes")
		}
	default:
		if actor.Role != models.RoleClient {
			return nil, models.NewErrorResponse(http.StatusForbidden, "Only clients can request changes")
		}
	}

	request = strings.TrimSpace(request)
	if request == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "A change request description is required")
	}

	job := s.Store.GetJob(jobID)
	if job == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Job not found")
	}
	if err := checkMilestoneAccess(actor, job); err != nil {
		return nil, err
	}

	updated, found := patchMilestone(job.Milestones, milestoneID, func(m *models.Milestone) {
		m.NeedsChanges = true
		m.ChangeRequest = &request
		m.Status = models.MilestoneNeedsChanges
		m.Approved = false
	})
	if !found {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Milestone not found")
	}

	s.Store.UpdateJob(job.ID, store.JobPatch{Milestones: &updated})
	return s.Store.GetJob(job.ID), nil
}

// RespondToChange resolves a pending change request: the response is
// stored as feedback, the request is cleared and work resumes.
func (s *Service) RespondToChange(actor Actor, jobID, milestoneID, response string) (*models.Job, error) {
	if actor.ID == "" {
		return nil, notAuthenticated()
	}

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Please enter a response")
	}
	if len(response) < ResponseMinLen {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Your response is too short")
	}
	if len(response) > ResponseMaxLen {
		return nil, models.NewErrorResponse(http.StatusBadRequest, "Your response is too long (maximum 1000 characters)")
	}

	job := s.Store.GetJob(jobID)
	if job == nil {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Job not found")
	}
	if err := checkMilestoneAccess(actor, job); err != nil {
		return nil, err
	}

	updated, found := patchMilestone(job.Milestones, milestoneID, func(m *models.Milestone) {
		m.NeedsChanges = false
		m.ChangeRequest = nil
		m.Feedback = &response
		m.Status = models.MilestoneInProgress
	})
	if !found {
		return nil, models.NewErrorResponse(http.StatusNotFound, "Milestone not found")
	}

	s.Store.UpdateJob(job.ID, store.JobPatch{Milestones: &updated})
	return s.Store.GetJob(job.ID), nil
}

// A freelancer may not touch milestones on a job they own as client; a
// client may only touch milestones on their own jobs.
func checkMilestoneAccess(actor Actor, job *models.Job) error {
	if actor.Role == models.RoleFreelancer && job.ClientID == actor.ID {
		return models.NewErrorResponse(http.StatusForbidden, "You don't have permission to modify this milestone")
	}
	if actor.Role == models.RoleClient && job.ClientID != actor.ID {
		return models.NewErrorResponse(http.StatusForbidden, "You don't have permission to modify this milestone")
	}
	return nil
}

func patchMilestone(ms []models.Milestone, id string, fn func(*models.Milestone)) ([]models.Milestone, bool) {
	out := models.CloneMilestones(ms)
	for i := range out {
		if out[i].ID == id {
			fn(&out[i])
			return out, true
		}
	}
	return nil, false
}
