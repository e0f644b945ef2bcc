package schedulemeeting

type Input struct {
	MentorID        string `json:"mentorId"`
	MenteeID        string `json:"menteeId"`
	ApplicationID   string `json:"applicationId"`
	StartsAt        string `json:"startsAt"` // RFC 3339
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Title           string `json:"title,omitempty"`
}

type Output struct {
	MeetingID string `json:"meetingId"`
	RoomURL   string `json:"roomUrl"`
	RoomName  string `json:"roomName"`
	StartsAt  string `json:"startsAt"`
	EndsAt    string `json:"endsAt"`
}

const defaultDurationMinutes = 30

const inputSchema = `{
	"type": "object",
	"required": ["mentorId", "menteeId", "applicationId", "startsAt"],
	"properties": {
		"mentorId": {"type": "string", "minLength": 1},
		"menteeId": {"type": "string", "minLength": 1},
		"applicationId": {"type": "string", "minLength": 1},
		"startsAt": {"type": "string", "minLength": 1},
		"durationMinutes": {"type": "integer", "minimum": 0, "maximum": 240},
		"title": {"type": "string", "maxLength": 200}
	}
}`
