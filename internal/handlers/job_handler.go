package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/services/lifecycle"
	"github.com/talentlane/marketplace_be/internal/services/ratelimit"
	"github.com/talentlane/marketplace_be/internal/store"
)

type JobHandler struct {
	Store  *store.Store
	Guard  *ratelimit.Guard
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewJobHandler(st *store.Store, guard *ratelimit.Guard, db *gorm.DB, logger *zap.Logger) *JobHandler {
	return &JobHandler{Store: st, Guard: guard, DB: db, Logger: logger}
}

type MilestoneReq struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
	Deadline     string  `json:"deadline"` // ISO format: 2026-01-03
	RefundPolicy string  `json:"refund_policy"`
}

type CreateJobRequest struct {
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	Category        string         `json:"category"`
	Skills          []string       `json:"skills"`
	Rate            string         `json:"rate"`
	ExperienceLevel string         `json:"experience_level"`
	Duration        string         `json:"duration"`
	Location        string         `json:"location"`
	Milestones      []MilestoneReq `json:"milestones"`
}

// JobResponse is the job DTO with the derived status and progress
// attached.
type JobResponse struct {
	ID          string   `json:"id"`
	ClientID    string   `json:"client_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Skills      []string `json:"skills"`
	Rate        string   `json:"rate"`

	ExperienceLevel string `json:"experience_level"`
	Duration        string `json:"duration"`
	Location        string `json:"location"`
	Posted          string `json:"posted"`

	ClientRating   float64 `json:"client_rating"`
	ClientSpent    string  `json:"client_spent"`
	ClientName     string  `json:"client_name,omitempty"`
	ClientLocation string  `json:"client_location,omitempty"`
	ClientJoined   string  `json:"client_joined,omitempty"`
	Verified       bool    `json:"verified"`

	Proposals  int                `json:"proposals"`
	Milestones []models.Milestone `json:"milestones"`

	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
}

func toJobResponse(job *models.Job) JobResponse {
	return JobResponse{
		ID:              job.ID,
		ClientID:        job.ClientID,
		Title:           job.Title,
		Description:     job.Description,
		Category:        job.Category,
		Skills:          job.Skills,
		Rate:            job.Rate,
		ExperienceLevel: job.ExperienceLevel,
		Duration:        job.Duration,
		Location:        job.Location,
		Posted:          job.Posted,
		ClientRating:    job.ClientRating,
		ClientSpent:     job.ClientSpent,
		ClientName:      job.ClientName,
		ClientLocation:  job.ClientLocation,
		ClientJoined:    job.ClientJoined,
		Verified:        job.Verified,
		Proposals:       job.Proposals,
		Milestones:      job.Milestones,
		Status:          lifecycle.JobStatus(job.Milestones),
		Progress:        lifecycle.Progress(job.Milestones),
	}
}

func parseMilestones(reqs []MilestoneReq, errs FieldErrors) []models.Milestone {
	out := make([]models.Milestone, 0, len(reqs))
	for i, r := range reqs {
		field := fmt.Sprintf("milestones[%d]", i)

		deadline, err := time.Parse("2006-01-02", r.Deadline)
		if err != nil {
			errs.Add(field, "Invalid deadline, expected YYYY-MM-DD")
			continue
		}

		m, err := models.NewMilestone(
			strings.TrimSpace(r.Title),
			strings.TrimSpace(r.Description),
			r.Amount,
			deadline,
			r.RefundPolicy,
		)
		if err != nil {
			errs.Add(field, "Milestone needs a title, a description, a positive amount and a valid refund policy")
			continue
		}
		out = append(out, m)
	}
	return out
}

// PostJob creates a job posting for the authenticated client.
func (h *JobHandler) PostJob(c *fiber.Ctx) error {
	act, name := actor(c)

	if err := h.Guard.CheckJobPost(c.Context(), act.ID); err != nil {
		return fail(c, err)
	}

	var req CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	errors := FieldErrors{}
	if len(strings.TrimSpace(req.Title)) < 10 {
		errors.Add("title", "Title must be at least 10 characters")
	}
	if len(strings.TrimSpace(req.Description)) < 50 {
		errors.Add("description", "Description must be at least 50 characters")
	}
	if strings.TrimSpace(req.Category) == "" {
		errors.Add("category", "Please select a category")
	}
	if len(req.Skills) == 0 {
		errors.Add("skills", "Please enter at least one skill")
	}
	if strings.TrimSpace(req.Rate) == "" {
		errors.Add("rate", "Please enter a budget")
	}
	if strings.TrimSpace(req.ExperienceLevel) == "" {
		errors.Add("experience_level", "Please select an experience level")
	}
	if strings.TrimSpace(req.Duration) == "" {
		errors.Add("duration", "Please select a project duration")
	}
	if len(req.Milestones) == 0 {
		errors.Add("milestones", "Please add at least one milestone")
	}

	milestones := parseMilestones(req.Milestones, errors)
	if len(errors) > 0 {
		return validationFail(c, errors)
	}

	// Reputation snapshot taken at posting time, not live-synced.
	var client models.User
	clientJoined := ""
	if err := h.DB.First(&client, "id = ?", act.ID).Error; err == nil {
		clientJoined = client.CreatedAt.Format("Jan 2006")
	}

	job := h.Store.AddJob(models.Job{
		ClientID:        act.ID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Category:        strings.TrimSpace(req.Category),
		Skills:          req.Skills,
		Rate:            strings.TrimSpace(req.Rate),
		ExperienceLevel: req.ExperienceLevel,
		Duration:        req.Duration,
		Location:        strings.TrimSpace(req.Location),
		ClientName:      name,
		ClientLocation:  client.Country,
		ClientJoined:    clientJoined,
		Milestones:      milestones,
	})

	if err := h.Guard.RecordJobPost(c.Context(), act.ID); err != nil {
		h.Logger.Error("record job post", zap.String("user_id", act.ID), zap.Error(err))
	}

	h.Logger.Info("job posted",
		zap.String("job_id", job.ID),
		zap.String("client_id", act.ID),
		zap.Int("milestones", len(job.Milestones)),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    toJobResponse(&job),
	})
}

// ListPublic returns all job postings.
func (h *JobHandler) ListPublic(c *fiber.Ctx) error {
	jobs := h.Store.ListJobs()
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobResponse(&jobs[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

func (h *JobHandler) GetDetail(c *fiber.Ctx) error {
	job := h.Store.GetJob(c.Params("id"))
	if job == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    toJobResponse(job),
	})
}

// ListMine returns the authenticated client's own postings.
func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	act, _ := actor(c)
	jobs := h.Store.GetClientJobs(act.ID)
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, toJobResponse(&jobs[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

type UpdateJobRequest struct {
	Title           *string   `json:"title"`
	Description     *string   `json:"description"`
	Category        *string   `json:"category"`
	Skills          *[]string `json:"skills"`
	Rate            *string   `json:"rate"`
	ExperienceLevel *string   `json:"experience_level"`
	Duration        *string   `json:"duration"`
	Location        *string   `json:"location"`
}

// UpdateJob shallow-merges simple fields into a job the client owns.
// Milestone lists are only replaced through the lifecycle transitions.
func (h *JobHandler) UpdateJob(c *fiber.Ctx) error {
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
			"message": "You can only edit your own jobs",
		})
	}

	var req UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	h.Store.UpdateJob(job.ID, store.JobPatch{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Skills:          req.Skills,
		Rate:            req.Rate,
		ExperienceLevel: req.ExperienceLevel,
		Duration:        req.Duration,
		Location:        req.Location,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toJobResponse(h.Store.GetJob(job.ID)),
	})
}

// DeleteJob removes a posting. Proposals for it are left in place and
// simply stop resolving a job.
func (h *JobHandler) DeleteJob(c *fiber.Ctx) error {
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
			"message": "You can only delete your own jobs",
		})
	}

	h.Store.DeleteJob(job.ID)
	h.Logger.Info("job deleted", zap.String("job_id", job.ID), zap.String("client_id", act.ID))

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job deleted",
	})
}

// GetCategories lists the distinct categories across current postings.
func (h *JobHandler) GetCategories(c *fiber.Ctx) error {
	seen := map[string]bool{}
	categories := []string{}
	for _, job := range h.Store.ListJobs() {
		if job.Category == "" || seen[job.Category] {
			continue
		}
		seen[job.Category] = true
		categories = append(categories, job.Category)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
	})
}
