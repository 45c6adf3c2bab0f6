// Package admin serves the back office routes on top of the admin views.
package admin

import (
	"time"

	views "lavapp/pkg/admin"
	"lavapp/pkg/repository"
)

// Handler serves the admin routes.
type Handler struct {
	store    repository.Store
	settings *views.Settings
	now      func() time.Time
}

func NewHandler(store repository.Store, settings *views.Settings) *Handler {
	return &Handler{store: store, settings: settings, now: time.Now}
}
