package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg back to path, stamping LastUpdated.
func SaveRegistry(path string, reg *ActivityRegistry) error {
	reg.LastUpdated = time.Now().UTC().Format("2006-01-02")
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find returns the activity serving taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// Validate checks every activity and returns all problems at once.
func (r *ActivityRegistry) Validate() error {
	var problems []string
	ids := map[string]bool{}
	taskTypes := map[string]bool{}

	for i, a := range r.Activities {
		name := a.ID
		if name == "" {
			name = fmt.Sprintf("activities[%d]", i)
			problems = append(problems, name+": id is required")
		}
		if ids[a.ID] {
			problems = append(problems, name+": duplicate id")
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			problems = append(problems, name+": taskType is required")
		} else if taskTypes[a.TaskType] {
			problems = append(problems, name+": duplicate taskType "+a.TaskType)
		}
		taskTypes[a.TaskType] = true

		switch a.ImplementationStatus {
		case StatusPlanned, StatusInProgress, StatusCompleted, StatusVerified:
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown implementationStatus %q", name, a.ImplementationStatus))
		}

		if _, err := time.ParseDuration(a.Timeout); err != nil {
			problems = append(problems, fmt.Sprintf("%s: invalid timeout %q", name, a.Timeout))
		}
		if a.Retries < 0 {
			problems = append(problems, name+": retries must not be negative")
		}

		for _, code := range a.ErrorCodes {
			if !errors.IsKnownCode(errors.ErrorCode(code)) {
				problems = append(problems, fmt.Sprintf("%s: unknown error code %s", name, code))
			}
		}

		if a.InputSchema != nil {
			raw, _ := json.Marshal(a.InputSchema)
			if _, err := validation.Compile(string(raw)); err != nil {
				problems = append(problems, fmt.Sprintf("%s: inputSchema: %v", name, err))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("registry has %d problem(s):\n  %s", len(problems), strings.Join(problems, "\n  "))
	}
	return nil
}
