package admin

import (
	"strings"
	"sync"

	"lavapp/pkg/config"
	"lavapp/pkg/repository"
)

// LaundrySettings are the business details shown in the back office.
type LaundrySettings struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Settings holds the laundry details in memory. Changes last until restart.
type Settings struct {
	mu      sync.RWMutex
	current LaundrySettings
}

// NewSettings seeds the settings from configuration.
func NewSettings(cfg *config.Config) *Settings {
	return &Settings{current: LaundrySettings{
		Name:    cfg.LaundryName,
		Address: cfg.LaundryAddress,
		Phone:   cfg.LaundryPhone,
		Email:   cfg.LaundryEmail,
	}}
}

func (s *Settings) Get() LaundrySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the settings. The name is required.
func (s *Settings) Update(next LaundrySettings) (LaundrySettings, error) {
	next.Name = strings.TrimSpace(next.Name)
	next.Email = strings.TrimSpace(next.Email)
	if next.Name == "" {
		return s.Get(), repository.InvalidInput("laundry name is required")
	}
	if next.Email != "" && !strings.Contains(next.Email, "@") {
		return s.Get(), repository.InvalidInput("laundry email %q is not valid", next.Email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	return s.current, nil
}
