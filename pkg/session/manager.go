package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"lavapp/pkg/logger"
	"lavapp/pkg/metrics"
	"lavapp/pkg/wizard"
)

// AccountsFactory builds the accounts of one browser client.
type AccountsFactory func(clientID string) Accounts

// Client is the server-side state of one browser: its identity provider and its
// order wizard. Lock it while touching the wizard.
type Client struct {
	sync.Mutex
	ID       string
	Provider *Provider
	Wizard   *wizard.Wizard

	lastSeen time.Time
}

// Manager owns the clients and closes the ones left idle.
type Manager struct {
	newAccounts AccountsFactory
	idle        time.Duration
	now         func() time.Time

	mu      sync.Mutex
	clients map[string]*Client
	cron    *cron.Cron
}

func NewManager(factory AccountsFactory, idle time.Duration) *Manager {
	return &Manager{
		newAccounts: factory,
		idle:        idle,
		now:         time.Now,
		clients:     make(map[string]*Client),
	}
}

// Get returns the client with id, creating and starting it on first use.
func (m *Manager) Get(id string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if c, ok := m.clients[id]; ok {
		c.lastSeen = now
		return c
	}

	log := logger.For("session").WithField("client", id)
	provider := NewProvider(m.newAccounts(id), log)
	provider.Start(context.Background())

	c := &Client{
		ID:       id,
		Provider: provider,
		Wizard:   wizard.New(),
		lastSeen: now,
	}
	m.clients[id] = c
	metrics.SetActiveClients(len(m.clients))
	return c
}

// Sweep closes clients idle for longer than the idle timeout and returns how many it dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	cutoff := m.now().Add(-m.idle)
	var stale []*Client
	for id, c := range m.clients {
		if c.lastSeen.Before(cutoff) {
			stale = append(stale, c)
			delete(m.clients, id)
		}
	}
	metrics.SetActiveClients(len(m.clients))
	m.mu.Unlock()

	for _, c := range stale {
		c.Provider.Close()
	}
	if len(stale) > 0 {
		logrus.Infof("🧹 Closed %d idle client sessions", len(stale))
	}
	return len(stale)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// StartSweeper runs Sweep on a schedule until Stop.
func (m *Manager) StartSweeper(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("schedule idle sweep: %w", err)
	}
	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()
	c.Start()
	return nil
}

// Stop halts the sweeper and closes every client.
func (m *Manager) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	clients := m.clients
	m.clients = make(map[string]*Client)
	metrics.SetActiveClients(0)
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, client := range clients {
		client.Provider.Close()
	}
}
