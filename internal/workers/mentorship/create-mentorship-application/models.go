package creatementorshipapplication

type Input struct {
	MenteeID        string                 `json:"menteeId"`
	MentorID        string                 `json:"mentorId"`
	ApplicationData map[string]interface{} `json:"applicationData"`
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	CreatedAt         string `json:"createdAt"` // RFC 3339
}

const applicationDataSchema = `{
	"type": "object",
	"required": ["goals"],
	"properties": {
		"goals": {"type": "string", "minLength": 1},
		"background": {"type": "string"},
		"preferredContact": {"type": "string", "enum": ["email", "video"]}
	}
}`
