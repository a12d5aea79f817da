package lifecycle

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/store"
)

const (
	clientID     = "client-1"
	freelancerID = "freelancer-1"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(store.NewMemoryMirror(), "lifecycle-test", zap.NewNop())
}

func milestone(id string, status models.MilestoneStatus, needsChanges bool) models.Milestone {
	m := models.Milestone{
		ID:           id,
		Title:        "Milestone " + id,
		Description:  "Deliverable " + id,
		Amount:       500,
		Deadline:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		RefundPolicy: models.RefundNone,
		Status:       status,
		NeedsChanges: needsChanges,
	}
	if needsChanges {
		req := "extend deadline"
		m.ChangeRequest = &req
		m.Status = models.MilestoneNeedsChanges
	}
	return m
}

func addJob(t *testing.T, st *store.Store, milestones ...models.Milestone) models.Job {
	t.Helper()
	return st.AddJob(models.Job{
		ClientID:        clientID,
		Title:           "Build a marketplace backend",
		Description:     strings.Repeat("A solid description of the work. ", 3),
		Category:        "Web Development",
		Skills:          []string{"Go"},
		Rate:            "$40/hr",
		ExperienceLevel: "Intermediate",
		Duration:        "1-3 months",
		Milestones:      milestones,
	})
}

func submit(t *testing.T, svc *Service, jobID string) *models.Proposal {
	t.Helper()
	p, err := svc.SubmitProposal(
		Actor{ID: freelancerID, Role: models.RoleFreelancer},
		jobID, "John Doe",
		strings.Repeat("I am a great fit for this project. ", 3),
		"$40/hr", nil,
	)
	if err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}
	return p
}

func wantStatusCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", code)
	}
	resp, ok := err.(*models.ErrorResponse)
	if !ok {
		t.Fatalf("expected *models.ErrorResponse, got %T: %v", err, err)
	}
	if resp.StatusCode != code {
		t.Fatalf("expected status %d, got %d (%s)", code, resp.StatusCode, resp.Message)
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name       string
		milestones []models.Milestone
		want       models.JobStatus
	}{
		{
			name:       "empty list",
			milestones: nil,
			want:       models.JobNotStarted,
		},
		{
			name: "all not started",
			milestones: []models.Milestone{
				milestone("m1", models.MilestoneNotStarted, false),
				milestone("m2", models.MilestoneNotStarted, false),
			},
			want: models.JobNotStarted,
		},
		{
			name: "one in progress",
			milestones: []models.Milestone{
				milestone("m1", models.MilestoneCompleted, false),
				milestone("m2", models.MilestoneInProgress, false),
				milestone("m3", models.MilestoneNotStarted, false),
			},
			want: models.JobInProgress,
		},
		{
			name: "all completed",
			milestones: []models.Milestone{
				milestone("m1", models.MilestoneCompleted, false),
				milestone("m2", models.MilestoneCompleted, false),
			},
			want: models.JobCompleted,
		},
		{
			name: "change request masks completion",
			milestones: []models.Milestone{
				milestone("m1", models.MilestoneCompleted, false),
				milestone("m2", models.MilestoneCompleted, false),
				milestone("m3", models.MilestoneCompleted, true),
			},
			want: models.JobChangeRequested,
		},
		{
			name: "change request masks in progress",
			milestones: []models.Milestone{
				milestone("m1", models.MilestoneInProgress, false),
				milestone("m2", models.MilestoneNotStarted, true),
			},
			want: models.JobChangeRequested,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JobStatus(tt.milestones); got != tt.want {
				t.Errorf("JobStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name       string
		milestones []models.Milestone
		want       int
	}{
		{"empty", nil, 0},
		{"none completed", []models.Milestone{
			milestone("m1", models.MilestoneNotStarted, false),
		}, 0},
		{"one of three", []models.Milestone{
			milestone("m1", models.MilestoneCompleted, false),
			milestone("m2", models.MilestoneInProgress, false),
			milestone("m3", models.MilestoneNotStarted, false),
		}, 33},
		{"two of three", []models.Milestone{
			milestone("m1", models.MilestoneCompleted, false),
			milestone("m2", models.MilestoneCompleted, false),
			milestone("m3", models.MilestoneNotStarted, false),
		}, 67},
		{"all completed", []models.Milestone{
			milestone("m1", models.MilestoneCompleted, false),
			milestone("m2", models.MilestoneCompleted, false),
		}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Progress(tt.milestones); got != tt.want {
				t.Errorf("Progress() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSubmitProposalDuplicateRejected(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneNotStarted, false))

	submit(t, svc, job.ID)

	_, err := svc.SubmitProposal(
		Actor{ID: freelancerID, Role: models.RoleFreelancer},
		job.ID, "John Doe",
		strings.Repeat("Second attempt at the same job. ", 3),
		"$45/hr", nil,
	)
	wantStatusCode(t, err, http.StatusConflict)

	if got := len(st.GetUserProposals(freelancerID)); got != 1 {
		t.Fatalf("expected 1 proposal after duplicate submit, got %d", got)
	}
}

func TestSubmitProposalOwnJobRejected(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneNotStarted, false))

	_, err := svc.SubmitProposal(
		Actor{ID: clientID, Role: models.RoleFreelancer},
		job.ID, "Jane Smith",
		strings.Repeat("Bidding on my own posting. ", 3),
		"$40/hr", nil,
	)
	wantStatusCode(t, err, http.StatusForbidden)
}

func TestSubmitProposalValidation(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneNotStarted, false))
	freelancer := Actor{ID: freelancerID, Role: models.RoleFreelancer}
	longEnough := strings.Repeat("Cover letter content. ", 4)

	tests := []struct {
		name        string
		actor       Actor
		coverLetter string
		rate        string
		wantCode    int
	}{
		{"wrong role", Actor{ID: clientID, Role: models.RoleClient}, longEnough, "$40/hr", http.StatusForbidden},
		{"short cover letter", freelancer, "too short", "$40/hr", http.StatusBadRequest},
		{"long cover letter", freelancer, strings.Repeat("x", 2001), "$40/hr", http.StatusBadRequest},
		{"bad rate", freelancer, longEnough, "forty bucks", http.StatusBadRequest},
		{"not authenticated", Actor{}, longEnough, "$40/hr", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitProposal(tt.actor, job.ID, "John Doe", tt.coverLetter, tt.rate, nil)
			wantStatusCode(t, err, tt.wantCode)
		})
	}
}

func TestAcceptProposalScenario(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")

	m1, _ := models.NewMilestone("Setup", "Repository and schema", 1000,
		time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), models.RefundNone)
	m2, _ := models.NewMilestone("API", "Core endpoints", 1500,
		time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), models.RefundNone)
	m3, _ := models.NewMilestone("Frontend", "UI integration", 1500,
		time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), models.RefundNone)
	m1.Approved, m2.Approved, m3.Approved = true, true, true

	job := addJob(t, st, m1, m2, m3)

	edited := models.CloneMilestones(job.Milestones)
	edited[0].Amount = 1200
	p, err := svc.SubmitProposal(
		Actor{ID: freelancerID, Role: models.RoleFreelancer},
		job.ID, "John Doe",
		strings.Repeat("I can deliver every milestone on time. ", 3),
		"$40/hr", edited,
	)
	if err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}

	accepted, err := svc.AcceptProposal(Actor{ID: clientID, Role: models.RoleClient}, p.ID)
	if err != nil {
		t.Fatalf("AcceptProposal: %v", err)
	}
	if accepted.Status != models.ProposalAccepted {
		t.Fatalf("proposal status = %q, want Accepted", accepted.Status)
	}

	got := st.GetJob(job.ID)
	if len(got.Milestones) != 3 {
		t.Fatalf("job has %d milestones, want 3", len(got.Milestones))
	}
	if got.Milestones[0].Amount != 1200 {
		t.Errorf("proposal's edited milestone plan should win, amount = %v", got.Milestones[0].Amount)
	}
	for i, m := range got.Milestones {
		if !m.Approved {
			t.Errorf("milestone %d not approved after acceptance", i)
		}
		if m.Status != models.MilestoneNotStarted {
			t.Errorf("milestone %d status = %q, want Not Started", i, m.Status)
		}
	}

	mine := st.GetUserProposals(freelancerID)
	if len(mine) != 1 {
		t.Fatalf("expected exactly one proposal for the freelancer, got %d", len(mine))
	}
}

func TestAcceptProposalOnlyOnce(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneNotStarted, false))
	client := Actor{ID: clientID, Role: models.RoleClient}

	first := submit(t, svc, job.ID)

	second, err := svc.SubmitProposal(
		Actor{ID: "freelancer-2", Role: models.RoleFreelancer},
		job.ID, "Second Bidder",
		strings.Repeat("Another strong application here. ", 3),
		"$35/hr", nil,
	)
	if err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}

	if _, err := svc.AcceptProposal(client, first.ID); err != nil {
		t.Fatalf("AcceptProposal: %v", err)
	}

	_, err = svc.AcceptProposal(client, second.ID)
	wantStatusCode(t, err, http.StatusConflict)

	if got := st.GetProposal(first.ID).Status; got != models.ProposalAccepted {
		t.Errorf("first proposal status = %q, want Accepted", got)
	}
	if got := st.GetProposal(second.ID).Status; got != models.ProposalPending {
		t.Errorf("second proposal status = %q, want Pending (unchanged)", got)
	}
}

func TestAcceptRejectRequireOwnership(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneNotStarted, false))
	p := submit(t, svc, job.ID)

	stranger := Actor{ID: "client-other", Role: models.RoleClient}

	_, err := svc.AcceptProposal(stranger, p.ID)
	wantStatusCode(t, err, http.StatusForbidden)

	_, err = svc.RejectProposal(stranger, p.ID)
	wantStatusCode(t, err, http.StatusForbidden)

	if got := st.GetProposal(p.ID).Status; got != models.ProposalPending {
		t.Fatalf("proposal status = %q, want Pending after denied attempts", got)
	}
}

func TestRejectProposal(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneNotStarted, false))
	p := submit(t, svc, job.ID)

	rejected, err := svc.RejectProposal(Actor{ID: clientID, Role: models.RoleClient}, p.ID)
	if err != nil {
		t.Fatalf("RejectProposal: %v", err)
	}
	if rejected.Status != models.ProposalRejected {
		t.Fatalf("status = %q, want Rejected", rejected.Status)
	}

	// Rejection has no side effects on the job.
	if got := st.GetJob(job.ID); len(got.Milestones) != 1 {
		t.Fatalf("job milestones changed on reject")
	}
}

func TestRequestChangeRoleRule(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		actor    Actor
		wantCode int // 0 means success
	}{
		{"client allowed by default", "client", Actor{ID: clientID, Role: models.RoleClient}, 0},
		{"freelancer blocked by default", "client", Actor{ID: freelancerID, Role: models.RoleFreelancer}, http.StatusForbidden},
		{"freelancer allowed when configured", "freelancer", Actor{ID: freelancerID, Role: models.RoleFreelancer}, 0},
		{"anyone allowed with any", "any", Actor{ID: freelancerID, Role: models.RoleFreelancer}, 0},
		{"strange client still needs ownership", "any", Actor{ID: "client-other", Role: models.RoleClient}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestStore(t)
			svc := NewService(st, tt.rule)
			job := addJob(t, st, milestone("m1", models.MilestoneInProgress, false))

			updated, err := svc.RequestChange(tt.actor, job.ID, "m1", "please extend the deadline")
			if tt.wantCode != 0 {
				wantStatusCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("RequestChange: %v", err)
			}
			m := updated.Milestones[0]
			if !m.NeedsChanges || m.ChangeRequest == nil {
				t.Fatalf("milestone not flagged: %+v", m)
			}
			if m.Approved {
				t.Errorf("approved must be withdrawn when changes are requested")
			}
			if got := JobStatus(updated.Milestones); got != models.JobChangeRequested {
				t.Errorf("job status = %q, want Change Requested", got)
			}
		})
	}
}

func TestRespondToChangeScenario(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneInProgress, true))

	response := strings.Repeat("ok, extended ", 3) // 39 chars, within bounds
	updated, err := svc.RespondToChange(Actor{ID: freelancerID, Role: models.RoleFreelancer}, job.ID, "m1", response)
	if err != nil {
		t.Fatalf("RespondToChange: %v", err)
	}

	m := updated.Milestones[0]
	if m.NeedsChanges {
		t.Error("needsChanges should be cleared")
	}
	if m.ChangeRequest != nil {
		t.Error("changeRequest should be cleared")
	}
	if m.Feedback == nil || *m.Feedback != strings.TrimSpace(response) {
		t.Errorf("feedback = %v, want the response text", m.Feedback)
	}
	if m.Status != models.MilestoneInProgress {
		t.Errorf("status = %q, want In Progress", m.Status)
	}
}

func TestRespondToChangeValidation(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneInProgress, true))
	freelancer := Actor{ID: freelancerID, Role: models.RoleFreelancer}

	tests := []struct {
		name     string
		actor    Actor
		jobID    string
		mid      string
		response string
		wantCode int
	}{
		{"empty response", freelancer, job.ID, "m1", "   ", http.StatusBadRequest},
		{"too short", freelancer, job.ID, "m1", "short", http.StatusBadRequest},
		{"too long", freelancer, job.ID, "m1", strings.Repeat("x", 1001), http.StatusBadRequest},
		{"missing milestone", freelancer, job.ID, "nope", "a perfectly fine response", http.StatusNotFound},
		{"missing job", freelancer, "nope", "m1", "a perfectly fine response", http.StatusNotFound},
		{"client not owner", Actor{ID: "client-other", Role: models.RoleClient}, job.ID, "m1", "a perfectly fine response", http.StatusForbidden},
		{"not authenticated", Actor{}, job.ID, "m1", "a perfectly fine response", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RespondToChange(tt.actor, tt.jobID, tt.mid, tt.response)
			wantStatusCode(t, err, tt.wantCode)
		})
	}
}

func TestRespondToChangeFreelancerOwnClientJob(t *testing.T) {
	st := newTestStore(t)
	svc := NewService(st, "client")
	job := addJob(t, st, milestone("m1", models.MilestoneInProgress, true))

	// The job's client acting under a freelancer role may not touch it.
	_, err := svc.RespondToChange(Actor{ID: clientID, Role: models.RoleFreelancer}, job.ID, "m1", "a perfectly fine response")
	wantStatusCode(t, err, http.StatusForbidden)
}
