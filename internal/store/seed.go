package store

import (
	"time"

	"github.com/talentlane/marketplace_be/internal/models"
)

// Demo account ids shared between the seeded users table and the
// seeded jobs, so a fresh install has a working client/freelancer pair.
const (
	DemoFreelancerID = "6b1e8d6e-0f6f-4c2a-9a01-6f1de17d9a01"
	DemoClientID     = "9c43b2aa-5d12-4f0b-8f6c-2be401c7aa02"
)

func seedJobs() []models.Job {
	return []models.Job{
		{
			ID:       "1",
			ClientID: DemoClientID,
			Title:    "Full Stack React & Node.js Developer Needed",
			Description: "We are looking for an experienced full stack developer with expertise in React, " +
				"Node.js, and MongoDB to help build a new web application for our growing startup.",
			Rate:            "$30-50/hr",
			ExperienceLevel: "Intermediate",
			Duration:        "3-6 months",
			Posted:          "2 hours ago",
			Location:        "Worldwide",
			Category:        "Web Development",
			Skills:          []string{"React", "Node.js", "MongoDB", "TypeScript", "Express.js"},
			ClientRating:    4.8,
			ClientSpent:     "10K",
			Proposals:       12,
			Verified:        true,
			ClientName:      "TechInnovate Solutions",
			ClientLocation:  "United States",
			ClientJoined:    "Jan 2021",
			Milestones: []models.Milestone{
				{
					ID:           "m1",
					Title:        "Initial Setup and Database Design",
					Description:  "Set up project repository, implement basic architecture, and design database schema",
					Amount:       1000,
					Deadline:     time.Date(2023, time.September, 15, 0, 0, 0, 0, time.UTC),
					RefundPolicy: models.RefundNone,
					Status:       models.MilestoneNotStarted,
					Approved:     true,
				},
				{
					ID:           "m2",
					Title:        "Backend API Development",
					Description:  "Develop RESTful API endpoints for core functionality",
					Amount:       1500,
					Deadline:     time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC),
					RefundPolicy: models.RefundNone,
					Status:       models.MilestoneNotStarted,
					Approved:     true,
				},
				{
					ID:           "m3",
					Title:        "Frontend Implementation",
					Description:  "Develop responsive UI components and integrate with backend",
					Amount:       1500,
					Deadline:     time.Date(2023, time.October, 15, 0, 0, 0, 0, time.UTC),
					RefundPolicy: models.RefundNone,
					Status:       models.MilestoneNotStarted,
					Approved:     true,
				},
			},
		},
		{
			ID:       "2",
			ClientID: DemoClientID,
			Title:    "UI/UX Designer for SaaS Dashboard Redesign",
			Description: "Looking for a talented UI/UX designer to help us redesign our SaaS dashboard. " +
				"The ideal candidate should have experience designing complex data visualization " +
				"interfaces and a strong portfolio.",
			Rate:            "$35-60/hr",
			ExperienceLevel: "Expert",
			Duration:        "1-3 months",
			Posted:          "6 hours ago",
			Location:        "United States",
			Category:        "UI/UX Design",
			Skills:          []string{"UI Design", "UX Design", "Figma", "Adobe XD", "Dashboard Design"},
			ClientRating:    4.9,
			ClientSpent:     "50K",
			Proposals:       18,
			Verified:        true,
			ClientName:      "SaaS Analytics Inc.",
			ClientLocation:  "United States",
			ClientJoined:    "Mar 2020",
			Milestones: []models.Milestone{
				{
					ID:           "m1",
					Title:        "Research and User Analysis",
					Description:  "Conduct user research, create personas, and analyze current UI pain points",
					Amount:       800,
					Deadline:     time.Date(2023, time.September, 20, 0, 0, 0, 0, time.UTC),
					RefundPolicy: models.RefundNone,
					Status:       models.MilestoneNotStarted,
					Approved:     true,
				},
				{
					ID:           "m2",
					Title:        "Wireframing and Prototype",
					Description:  "Create wireframes and interactive prototype for user testing",
					Amount:       1200,
					Deadline:     time.Date(2023, time.October, 5, 0, 0, 0, 0, time.UTC),
					RefundPolicy: models.RefundNone,
					Status:       models.MilestoneNotStarted,
					Approved:     true,
				},
				{
					ID:           "m3",
					Title:        "Final UI Design and Design System",
					Description:  "Deliver final UI designs and component design system",
					Amount:       2000,
					Deadline:     time.Date(2023, time.October, 25, 0, 0, 0, 0, time.UTC),
					RefundPolicy: models.RefundNone,
					Status:       models.MilestoneNotStarted,
					Approved:     true,
				},
			},
		},
	}
}
