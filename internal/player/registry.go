package player

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry owns the live processors, one per playback session. Creation
// and destruction are explicit; nothing is keyed off host object identity.
type Registry struct {
	mu     sync.RWMutex
	procs  map[string]*Processor
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		procs:  make(map[string]*Processor),
		logger: logger,
	}
}

// Create builds and starts a processor for the session. Fails if the
// session already has one.
func (r *Registry) Create(sessionID string, clock MediaClock, ch Channel, sink FrameSink, cfg Config) (*Processor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.procs[sessionID]; exists {
		return nil, fmt.Errorf("session %s already has a processor", sessionID)
	}

	proc := NewProcessor(sessionID, clock, ch, sink, cfg, r.logger)
	r.procs[sessionID] = proc
	proc.Start()

	r.logger.Info("processor created", zap.String("session_id", sessionID))
	return proc, nil
}

func (r *Registry) Get(sessionID string) (*Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	proc, ok := r.procs[sessionID]
	return proc, ok
}

// Destroy tears down the session's processor and forgets it.
func (r *Registry) Destroy(sessionID string) error {
	r.mu.Lock()
	proc, ok := r.procs[sessionID]
	delete(r.procs, sessionID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no processor for session %s", sessionID)
	}

	if err := proc.Close(); err != nil {
		return fmt.Errorf("closing processor for session %s: %w", sessionID, err)
	}
	r.logger.Info("processor destroyed", zap.String("session_id", sessionID))
	return nil
}

// Shutdown destroys every live processor.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	procs := r.procs
	r.procs = make(map[string]*Processor)
	r.mu.Unlock()

	for id, proc := range procs {
		if err := proc.Close(); err != nil {
			r.logger.Warn("closing processor", zap.String("session_id", id), zap.Error(err))
		}
	}
}
