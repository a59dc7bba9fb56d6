package app

import "sync"

// UploadLimiter не даёт двум загрузкам одного отряда идти одновременно.
type UploadLimiter struct {
	mu   sync.Mutex
	byID map[int64]*sync.Mutex
}

func NewUploadLimiter() *UploadLimiter {
	return &UploadLimiter{byID: make(map[int64]*sync.Mutex)}
}

func (l *UploadLimiter) Lock(troupeID int64) func() {
	l.mu.Lock()
	m, ok := l.byID[troupeID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[troupeID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() { m.Unlock() }
}
