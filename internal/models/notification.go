package models

type NotificationType string

const (
	NotificationApplicationSubmitted NotificationType = "application_submitted"
	NotificationApplicationReceived  NotificationType = "application_received"
	NotificationApplicationAccepted  NotificationType = "application_accepted"
	NotificationMeetingScheduled     NotificationType = "meeting_scheduled"
	NotificationGoalCompleted        NotificationType = "goal_completed"
)

type NotificationStatus string

const (
	NotificationSent     NotificationStatus = "sent"
	NotificationFailed   NotificationStatus = "failed"
	NotificationDisabled NotificationStatus = "disabled"
)

// EmailMessage is a rendered email ready for a provider.
type EmailMessage struct {
	To       string
	ToName   string
	Subject  string
	TextBody string
	HTMLBody string
}

type NotificationTemplate struct {
	Subject string
	Body    string
}
