package sendnotification

import "github.com/Barlow1/hoots-sub000/internal/models"

type Input struct {
	RecipientID      string                  `json:"recipientId"`
	NotificationType models.NotificationType `json:"notificationType"`
	ApplicationID    string                  `json:"applicationId,omitempty"`
	MeetingID        string                  `json:"meetingId,omitempty"`
	Priority         string                  `json:"priority,omitempty"`
	Metadata         map[string]interface{}  `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string                    `json:"notificationId"`
	Status         models.NotificationStatus `json:"status"`
	SentAt         string                    `json:"sentAt"` // RFC 3339
	Channels       []string                  `json:"channels"`
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	PriorityHigh = "high"
)

type recipient struct {
	Email string
	Phone string
	Name  string
}
