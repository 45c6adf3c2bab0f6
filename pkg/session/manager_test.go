package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lavapp/pkg/wizard"
)

func TestManager_GetReusesClient(t *testing.T) {
	created := 0
	m := NewManager(func(string) Accounts {
		created++
		return newFakeAccounts()
	}, time.Minute)
	t.Cleanup(m.Stop)

	a := m.Get("a")
	assert.Same(t, a, m.Get("a"))
	assert.NotSame(t, a, m.Get("b"))
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, wizard.StepServiceType, a.Wizard.Step())
}

func TestManager_SweepClosesIdleClients(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(func(string) Accounts { return newFakeAccounts() }, 30*time.Minute)
	m.now = func() time.Time { return clock }
	t.Cleanup(m.Stop)

	idle := m.Get("idle")
	clock = clock.Add(20 * time.Minute)
	active := m.Get("active")
	clock = clock.Add(15 * time.Minute)

	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())
	assert.True(t, idle.Provider.Closed())
	assert.False(t, active.Provider.Closed())

	assert.NotSame(t, idle, m.Get("idle"))
}

func TestManager_StopClosesEverything(t *testing.T) {
	m := NewManager(func(string) Accounts { return newFakeAccounts() }, time.Minute)
	require.NoError(t, m.StartSweeper("@every 1h"))

	c := m.Get("a")
	_, err := c.Provider.Wait(context.Background())
	require.NoError(t, err)

	m.Stop()
	assert.Equal(t, 0, m.Len())
	assert.True(t, c.Provider.Closed())
}

func TestManager_StartSweeperRejectsBadSpec(t *testing.T) {
	m := NewManager(func(string) Accounts { return newFakeAccounts() }, time.Minute)
	assert.Error(t, m.StartSweeper("not a schedule"))
}
