package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu               sync.Mutex
	syncRuns         int
	syncSkipped      int
	pairingsResolved map[string]int
	unresolvedGames  int
	fetchFailures    int
	syncDurations    []float64
	slackNotifSent   int
	slackNotifFailed int
	startupTime      float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		pairingsResolved: make(map[string]int),
		syncDurations:    make([]float64, 0),
	}
}

func (m *Mock) IncSyncRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRuns++
}

func (m *Mock) IncSyncSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncSkipped++
}

func (m *Mock) IncPairingsResolved(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairingsResolved[source]++
}

func (m *Mock) IncUnresolvedGames() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unresolvedGames++
}

func (m *Mock) IncFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchFailures++
}

func (m *Mock) ObserveSyncDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncDurations = append(m.syncDurations, seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SyncRuns returns the number of times IncSyncRuns was called.
func (m *Mock) SyncRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncRuns
}

// SyncSkipped returns the number of times IncSyncSkipped was called.
func (m *Mock) SyncSkipped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncSkipped
}

// PairingsResolved returns the number of resolutions recorded for a source.
func (m *Mock) PairingsResolved(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pairingsResolved[source]
}

// UnresolvedGames returns the number of times IncUnresolvedGames was called.
func (m *Mock) UnresolvedGames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unresolvedGames
}

// FetchFailures returns the number of times IncFetchFailures was called.
func (m *Mock) FetchFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchFailures
}

// SyncDurations returns every observed run duration.
func (m *Mock) SyncDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.syncDurations...)
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
