package calculategoalprogress

import "github.com/Barlow1/hoots-sub000/internal/engine"

type Input struct {
	GoalID     string             `json:"goalId"`
	Milestones []engine.Milestone `json:"milestones,omitempty"`
}

type Output struct {
	GoalID         string `json:"goalId"`
	Progress       int    `json:"progress"`
	CompletedCount int    `json:"completedCount"`
	TotalCount     int    `json:"totalCount"`
	IsComplete     bool   `json:"isComplete"`
}
