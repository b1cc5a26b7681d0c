package project

import (
	"time"

	id "fundledger/pkg/domain"
)

// View is the read model for a project, safe to serialize and cache. It
// flattens the aggregate without exposing its mutable collections.
type View struct {
	ID                id.ProjectID   `json:"id"`
	Researcher        id.Principal   `json:"researcher"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	ResearchArea      string         `json:"research_area"`
	FundingGoal       id.Amount      `json:"funding_goal"`
	CurrentFunding    id.Amount      `json:"current_funding"`
	Deadline          time.Time      `json:"deadline"`
	Status            Status         `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	PlannedMilestones []string       `json:"planned_milestones"`
	Contributors      []id.Principal `json:"contributors"`
}

// NewView snapshots a project aggregate into its read model.
func NewView(p *Project) *View {
	return &View{
		ID:                p.ID,
		Researcher:        p.Researcher,
		Title:             p.Title,
		Description:       p.Description,
		ResearchArea:      p.ResearchArea,
		FundingGoal:       p.FundingGoal,
		CurrentFunding:    p.CurrentFunding,
		Deadline:          p.Deadline,
		Status:            p.Status,
		CreatedAt:         p.CreatedAt,
		PlannedMilestones: append([]string{}, p.PlannedMilestones...),
		Contributors:      p.Contributors(),
	}
}
