package engine

// Milestone is a sub-task of a goal. Only Completed matters for progress.
type Milestone struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Completed bool   `json:"completed"`
}

// GoalProgress returns the share of completed milestones as a percentage in
// [0, 100], rounded up. No milestones means no progress.
func GoalProgress(milestones []Milestone) int {
	total := len(milestones)
	if total == 0 {
		return 0
	}
	return ceilPercent(CountCompleted(milestones), total)
}

// CountCompleted returns how many milestones are marked completed.
func CountCompleted(milestones []Milestone) int {
	n := 0
	for _, m := range milestones {
		if m.Completed {
			n++
		}
	}
	return n
}

func ceilPercent(part, total int) int {
	return (100*part + total - 1) / total
}
