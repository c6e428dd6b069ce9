// Package credential persists the single API credential the client needs.
package credential

import "sync"

// Key is the fixed name the credential is stored under.
const Key = "groqApiKey"

// Store holds at most one credential. Storage failures are treated as an
// absent value; callers never see an error.
type Store interface {
	Save(token string)
	Read() (string, bool)
	Clear()
}

// Memory is an in-process Store, used by tests and when the SQLite file is
// unavailable.
type Memory struct {
	mu    sync.RWMutex
	token string
	set   bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.set = true
}

func (m *Memory) Read() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.set
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.set = false
}
