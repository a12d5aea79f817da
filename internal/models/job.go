package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type MilestoneStatus string

const (
	MilestoneNotStarted   MilestoneStatus = "Not Started"
	MilestoneInProgress   MilestoneStatus = "In Progress"
	MilestoneCompleted    MilestoneStatus = "Completed"
	MilestoneNeedsChanges MilestoneStatus = "Needs Changes"
)

// JobStatus is derived from a job's milestone list, never stored.
type JobStatus string

const (
	JobNotStarted      JobStatus = "Not Started"
	JobInProgress      JobStatus = "In Progress"
	JobCompleted       JobStatus = "Completed"
	JobChangeRequested JobStatus = "Change Requested"
)

const (
	RefundNone    = "No refund after delivery approval"
	RefundPartial = "50% refund within 3 days of approval"
	RefundFull    = "Full refund if not meeting requirements"
)

var ErrInvalidMilestone = errors.New("invalid milestone")

// Milestone is owned by exactly one job; it has no existence outside
// its parent's milestone list.
type Milestone struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        float64         `json:"amount"`
	Deadline      time.Time       `json:"deadline"`
	RefundPolicy  string          `json:"refundPolicy"`
	Status        MilestoneStatus `json:"status"`
	Approved      bool            `json:"approved"`
	Feedback      *string         `json:"feedback,omitempty"`
	NeedsChanges  bool            `json:"needsChanges,omitempty"`
	ChangeRequest *string         `json:"changeRequest,omitempty"`
}

func ValidRefundPolicy(p string) bool {
	switch p {
	case RefundNone, RefundPartial, RefundFull:
		return true
	}
	return false
}

// NewMilestone builds a milestone in its initial state. Amount must be
// positive and the refund policy one of the three fixed options.
func NewMilestone(title, description string, amount float64, deadline time.Time, refundPolicy string) (Milestone, error) {
	if title == "" || description == "" {
		return Milestone{}, ErrInvalidMilestone
	}
	if amount <= 0 {
		return Milestone{}, ErrInvalidMilestone
	}
	if !ValidRefundPolicy(refundPolicy) {
		return Milestone{}, ErrInvalidMilestone
	}
	return Milestone{
		ID:           uuid.New().String(),
		Title:        title,
		Description:  description,
		Amount:       amount,
		Deadline:     deadline,
		RefundPolicy: refundPolicy,
		Status:       MilestoneNotStarted,
	}, nil
}

type Job struct {
	ID          string   `json:"id"`
	ClientID    string   `json:"clientId"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	Rate        string   `json:"rate"`

	ExperienceLevel string `json:"experienceLevel"`
	Duration        string `json:"duration"`
	Location        string `json:"location"`
	Posted          string `json:"posted"`

	// Client reputation snapshot taken when the job is posted. Not
	// live-synced to the user record.
	ClientRating   float64 `json:"clientRating"`
	ClientSpent    string  `json:"clientSpent"`
	ClientName     string  `json:"clientName,omitempty"`
	ClientLocation string  `json:"clientLocation,omitempty"`
	ClientJoined   string  `json:"clientJoined,omitempty"`
	Verified       bool    `json:"verified"`

	// Proposals is a display hint incremented on submission; the
	// proposal collection is the source of truth.
	Proposals int `json:"proposals"`

	Milestones []Milestone `json:"milestones"`
}

// CloneMilestones deep-copies a milestone list so a proposal can edit
// its working copy without touching the job's own.
func CloneMilestones(src []Milestone) []Milestone {
	out := make([]Milestone, len(src))
	copy(out, src)
	for i := range out {
		if src[i].Feedback != nil {
			v := *src[i].Feedback
			out[i].Feedback = &v
		}
		if src[i].ChangeRequest != nil {
			v := *src[i].ChangeRequest
			out[i].ChangeRequest = &v
		}
	}
	return out
}
