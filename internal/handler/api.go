package handler

import (
	"time"

	"github.com/habitlog/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	tracker      *service.TrackerService
	passwordHash string
	now          func() time.Time
}

// NewAPI constructs a handler set around the session's tracker service.
// An empty passwordHash disables login.
func NewAPI(tracker *service.TrackerService, passwordHash string) *API {
	return &API{
		tracker:      tracker,
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// AuthEnabled reports whether API routes require a session login.
func (a *API) AuthEnabled() bool {
	return a.passwordHash != ""
}
