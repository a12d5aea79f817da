package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "Pending"
	ProposalAccepted ProposalStatus = "Accepted"
	ProposalRejected ProposalStatus = "Rejected"
)

const (
	CoverLetterMinLen = 50
	CoverLetterMaxLen = 2000
)

// Accepts formats like "$30/hr", "$5000 fixed", "40/hr".
var rateRe = regexp.MustCompile(`(?i)^(\$)?[\d,]+(\s*/\s*hr|\s+fixed)?$`)

func ValidRate(rate string) bool {
	return rateRe.MatchString(strings.TrimSpace(rate))
}

type Proposal struct {
	ID             string          `json:"id"`
	JobID          string          `json:"jobId"`
	FreelancerID   string          `json:"freelancerId"`
	FreelancerName string          `json:"freelancerName,omitempty"`
	CoverLetter    string          `json:"coverLetter"`
	Rate           string          `json:"rate"`
	Status         ProposalStatus  `json:"status"`
	Milestones     []Milestone     `json:"milestones"`
	SubmittedAt    time.Time       `json:"submittedAt"`
}

// NewProposal drafts a pending proposal for a job. The job's milestones
// are cloned as the candidate plan with approval reset, so the
// freelancer edits a working copy.
func NewProposal(job *Job, freelancerID, freelancerName, coverLetter, rate string) Proposal {
	ms := CloneMilestones(job.Milestones)
	for i := range ms {
		ms[i].Approved = false
	}
	return Proposal{
		ID:             uuid.New().String(),
		JobID:          job.ID,
		FreelancerID:   freelancerID,
		FreelancerName: freelancerName,
		CoverLetter:    strings.TrimSpace(coverLetter),
		Rate:           strings.TrimSpace(rate),
		Status:         ProposalPending,
		Milestones:     ms,
		SubmittedAt:    time.Now(),
	}
}
