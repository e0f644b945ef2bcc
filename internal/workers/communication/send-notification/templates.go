package sendnotification

import (
	"fmt"
	"html"
	"strings"

	"github.com/Barlow1/hoots-sub000/internal/models"
)

var templates = map[models.NotificationType]models.NotificationTemplate{
	models.NotificationApplicationSubmitted: {
		Subject: "Your mentorship application was sent",
		Body:    "Hi {{recipientName}}, your application {{applicationId}} is on its way. We will let you know when your mentor responds. {{appUrl}}/applications/{{applicationId}}",
	},
	models.NotificationApplicationReceived: {
		Subject: "You have a new mentee application",
		Body:    "Hi {{recipientName}}, someone would like you to mentor them. Review application {{applicationId}} at {{appUrl}}/applications/{{applicationId}}",
	},
	models.NotificationApplicationAccepted: {
		Subject: "Your mentor said yes",
		Body:    "Hi {{recipientName}}, your application {{applicationId}} was accepted. Book your first session at {{appUrl}}/applications/{{applicationId}}",
	},
	models.NotificationMeetingScheduled: {
		Subject: "Mentorship session scheduled",
		Body:    "Hi {{recipientName}}, your session starts {{startsAt}}. Join here: {{roomUrl}}",
	},
	models.NotificationGoalCompleted: {
		Subject: "Goal completed",
		Body:    "Congratulations {{recipientName}}! You completed {{goalName}}. {{appUrl}}/goals",
	},
}

// renderTemplate replaces {{key}} placeholders with values from data and
// drops any placeholder left without a value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case nil:
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}

func htmlBody(text string) string {
	return "<p>" + html.EscapeString(text) + "</p>"
}
