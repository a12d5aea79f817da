package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talentlane/marketplace_be/internal/models"
)

// Store owns the job and proposal collections. All mutation goes
// through its methods; every write is mirrored as a JSON snapshot so
// state survives a restart. Operations on a missing id are silent
// no-ops or empty results, never errors -- callers validate existence
// with a prior GetJob/GetProposal.
type Store struct {
	mu        sync.RWMutex
	jobs      []models.Job
	proposals []models.Proposal

	mirror    Mirror
	namespace string
	logger    *zap.Logger
}

func New(mirror Mirror, namespace string, logger *zap.Logger) *Store {
	return &Store{
		mirror:    mirror,
		namespace: namespace,
		logger:    logger,
	}
}

type snapshot struct {
	Jobs      []models.Job      `json:"jobs"`
	Proposals []models.Proposal `json:"proposals"`
}

// Load restores the persisted snapshot for the store's namespace. An
// empty or unreadable namespace falls back to the seeded demo jobs.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.mirror.Load(ctx, s.namespace)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		s.jobs = seedJobs()
		s.proposals = nil
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("discarding corrupt store snapshot",
			zap.String("namespace", s.namespace),
			zap.Error(err),
		)
		s.jobs = seedJobs()
		s.proposals = nil
		return nil
	}

	s.jobs = snap.Jobs
	s.proposals = snap.Proposals
	return nil
}

// persist mirrors the current state. Must be called with the write
// lock held. Mirror failures are logged, not surfaced: the snapshot is
// a best-effort mirror, the in-memory state stays authoritative.
func (s *Store) persist() {
	data, err := json.Marshal(snapshot{Jobs: s.jobs, Proposals: s.proposals})
	if err != nil {
		s.logger.Error("marshal store snapshot", zap.Error(err))
		return
	}
	if err := s.mirror.Save(context.Background(), s.namespace, data); err != nil {
		s.logger.Error("mirror store snapshot",
			zap.String("namespace", s.namespace),
			zap.Error(err),
		)
	}
}

// AddJob appends a job, assigning an id when absent. The posted label
// and proposal counter are always stamped fresh.
func (s *Store) AddJob(job models.Job) models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	job.Posted = "Just now"
	job.Proposals = 0

	s.jobs = append(s.jobs, job)
	s.persist()
	return job
}

// JobPatch is a shallow-merge update: nil fields are left untouched. A
// non-nil Milestones replaces the whole list, it is never merged
// element-wise.
type JobPatch struct {
	Title           *string
	Description     *string
	Category        *string
	Skills          *[]string
	Rate            *string
	ExperienceLevel *string
	Duration        *string
	Location        *string
	Milestones      *[]models.Milestone
}

func (s *Store) UpdateJob(id string, patch JobPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.jobs {
		if s.jobs[i].ID != id {
			continue
		}
		j := &s.jobs[i]
		if patch.Title != nil {
			j.Title = *patch.Title
		}
		if patch.Description != nil {
			j.Description = *patch.Description
		}
		if patch.Category != nil {
			j.Category = *patch.Category
		}
		if patch.Skills != nil {
			j.Skills = *patch.Skills
		}
		if patch.Rate != nil {
			j.Rate = *patch.Rate
		}
		if patch.ExperienceLevel != nil {
			j.ExperienceLevel = *patch.ExperienceLevel
		}
		if patch.Duration != nil {
			j.Duration = *patch.Duration
		}
		if patch.Location != nil {
			j.Location = *patch.Location
		}
		if patch.Milestones != nil {
			j.Milestones = *patch.Milestones
		}
		s.persist()
		return
	}
}

// DeleteJob removes the job. Its proposals are not cascade-deleted;
// they stay queryable by id but no longer resolve a job.
func (s *Store) DeleteJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.jobs[:0]
	removed := false
	for _, j := range s.jobs {
		if j.ID == id {
			removed = true
			continue
		}
		kept = append(kept, j)
	}
	s.jobs = kept
	if removed {
		s.persist()
	}
}

func (s *Store) GetJob(id string) *models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return copyJob(&s.jobs[i])
		}
	}
	return nil
}

func (s *Store) GetClientJobs(clientID string) []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Job{}
	for i := range s.jobs {
		if s.jobs[i].ClientID == clientID {
			out = append(out, *copyJob(&s.jobs[i]))
		}
	}
	return out
}

func (s *Store) ListJobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Job, 0, len(s.jobs))
	for i := range s.jobs {
		out = append(out, *copyJob(&s.jobs[i]))
	}
	return out
}

// AddProposal appends the proposal and bumps the matching job's
// proposal counter under the same lock.
func (s *Store) AddProposal(p models.Proposal) models.Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now()
	}

	s.proposals = append(s.proposals, p)
	for i := range s.jobs {
		if s.jobs[i].ID == p.JobID {
			s.jobs[i].Proposals++
			break
		}
	}
	s.persist()
	return p
}

// ProposalPatch is a shallow-merge update, same contract as JobPatch.
type ProposalPatch struct {
	CoverLetter *string
	Rate        *string
	Status      *models.ProposalStatus
	Milestones  *[]models.Milestone
}

func (s *Store) UpdateProposal(id string, patch ProposalPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proposals {
		if s.proposals[i].ID != id {
			continue
		}
		p := &s.proposals[i]
		if patch.CoverLetter != nil {
			p.CoverLetter = *patch.CoverLetter
		}
		if patch.Rate != nil {
			p.Rate = *patch.Rate
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Milestones != nil {
			p.Milestones = *patch.Milestones
		}
		s.persist()
		return
	}
}

func (s *Store) GetProposal(id string) *models.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.proposals {
		if s.proposals[i].ID == id {
			return copyProposal(&s.proposals[i])
		}
	}
	return nil
}

func (s *Store) GetJobProposals(jobID string) []models.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Proposal{}
	for i := range s.proposals {
		if s.proposals[i].JobID == jobID {
			out = append(out, *copyProposal(&s.proposals[i]))
		}
	}
	return out
}

func (s *Store) GetUserProposals(freelancerID string) []models.Proposal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Proposal{}
	for i := range s.proposals {
		if s.proposals[i].FreelancerID == freelancerID {
			out = append(out, *copyProposal(&s.proposals[i]))
		}
	}
	return out
}

// Reads hand out copies so callers can build a replacement milestone
// list without racing the collections.
func copyJob(j *models.Job) *models.Job {
	out := *j
	out.Skills = append([]string(nil), j.Skills...)
	out.Milestones = models.CloneMilestones(j.Milestones)
	return &out
}

func copyProposal(p *models.Proposal) *models.Proposal {
	out := *p
	out.Milestones = models.CloneMilestones(p.Milestones)
	return &out
}
