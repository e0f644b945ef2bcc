package schedulemeeting

import (
	"context"
	"time"

	"github.com/Barlow1/hoots-sub000/internal/common/config"
	"github.com/Barlow1/hoots-sub000/internal/common/http"
)

type RoomRequest struct {
	Name      string
	NotBefore time.Time
	Expires   time.Time
}

type Room struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RoomProvider creates and removes video rooms.
type RoomProvider interface {
	CreateRoom(ctx context.Context, req RoomRequest) (*Room, error)
	DeleteRoom(ctx context.Context, name string) error
}

type roomProperties struct {
	NotBefore int64 `json:"nbf"`
	Expires   int64 `json:"exp"`
}

type createRoomBody struct {
	Name       string         `json:"name"`
	Privacy    string         `json:"privacy"`
	Properties roomProperties `json:"properties"`
}

// HTTPRoomProvider talks to a Daily-style REST API.
type HTTPRoomProvider struct {
	client *http.Client
}

func NewRoomProvider(cfg config.MeetingsConfig) *HTTPRoomProvider {
	client := http.NewClient(cfg.BaseURL, config.GetDuration(cfg.Timeout), http.RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
	}).WithBearer(cfg.APIKey)
	return &HTTPRoomProvider{client: client}
}

func (p *HTTPRoomProvider) CreateRoom(ctx context.Context, req RoomRequest) (*Room, error) {
	var room Room
	err := p.client.PostJSON(ctx, "/rooms", createRoomBody{
		Name:    req.Name,
		Privacy: "private",
		Properties: roomProperties{
			NotBefore: req.NotBefore.Unix(),
			Expires:   req.Expires.Unix(),
		},
	}, &room)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (p *HTTPRoomProvider) DeleteRoom(ctx context.Context, name string) error {
	return p.client.Delete(ctx, "/rooms/"+name)
}
