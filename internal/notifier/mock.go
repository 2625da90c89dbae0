package notifier

import (
	"sync"
	"time"

	"github.com/mauv0809/chess-roundrobin/internal/tournament"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendResultNotificationFunc func(notice ResultNotice, dryRun bool) (string, error)
	SendStandingsFunc          func(standings []tournament.Standing, lastSync *time.Time, dryRun bool) error

	// Call records
	SendResultNotificationCalls []SendResultNotificationCall
	SendStandingsCalls          []SendStandingsCall
}

// SendResultNotificationCall holds the arguments for a call to SendResultNotification.
type SendResultNotificationCall struct {
	Notice ResultNotice
	DryRun bool
}

// SendStandingsCall holds the arguments for a call to SendStandings.
type SendStandingsCall struct {
	Standings []tournament.Standing
	LastSync  *time.Time
	DryRun    bool
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = nil
	m.SendStandingsCalls = nil
}

func (m *Mock) SendResultNotification(notice ResultNotice, dryRun bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendResultNotificationCalls = append(m.SendResultNotificationCalls, SendResultNotificationCall{Notice: notice, DryRun: dryRun})
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(notice, dryRun)
	}
	return "mock-ts", nil
}

func (m *Mock) SendStandings(standings []tournament.Standing, lastSync *time.Time, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, SendStandingsCall{Standings: standings, LastSync: lastSync, DryRun: dryRun})
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(standings, lastSync, dryRun)
	}
	return nil
}

// ResultNotifications returns a copy of the recorded result notifications.
func (m *Mock) ResultNotifications() []SendResultNotificationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SendResultNotificationCall(nil), m.SendResultNotificationCalls...)
}
