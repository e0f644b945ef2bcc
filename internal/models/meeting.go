package models

import "time"

// Meeting is a scheduled video session between a mentor and a mentee.
type Meeting struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"applicationId"`
	MentorID      string    `json:"mentorId"`
	MenteeID      string    `json:"menteeId"`
	Title         string    `json:"title"`
	RoomName      string    `json:"roomName"`
	RoomURL       string    `json:"roomUrl"`
	StartsAt      time.Time `json:"startsAt"`
	EndsAt        time.Time `json:"endsAt"`
}
