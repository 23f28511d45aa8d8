package storage

import "sync"

// memoryStore keeps everything in process memory. It backs the "none"
// storage type and tests; nothing survives a restart.
type memoryStore struct {
	mu    sync.Mutex
	seen  map[string]bool
	saved []string
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) SeenArticle(link string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[link], nil
}

func (m *memoryStore) MarkArticle(link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen[link] = true
	return nil
}

func (m *memoryStore) SavedIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saved...), nil
}

func (m *memoryStore) PutSavedIDs(ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append([]string(nil), ids...)
	return nil
}
