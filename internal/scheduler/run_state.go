// Package scheduler contém as rotinas agendadas do importador
package scheduler

import (
	"errors"
	"sync"
	"time"
)

// ErrSyncRunning indica que a rotina já está em execução
var ErrSyncRunning = errors.New("sync already running")

// runState controla a execução exclusiva de uma rotina agendada
type runState struct {
	mu          sync.Mutex
	running     bool
	startedAt   time.Time
	completedAt time.Time
	lastError   string
}

// tryStart marca a rotina como em execução; false se já houver uma rodando
func (r *runState) tryStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return false
	}
	r.running = true
	r.startedAt = time.Now()
	return true
}

func (r *runState) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.running = false
	r.completedAt = time.Now()
	r.lastError = ""
	if err != nil {
		r.lastError = err.Error()
	}
}

func (r *runState) isRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runState) fill(status map[string]any) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	status["running"] = r.running
	status["last_sync_started_at"] = r.startedAt
	status["last_sync_completed_at"] = r.completedAt
	if r.lastError != "" {
		status["last_error"] = r.lastError
	}
	return status
}
