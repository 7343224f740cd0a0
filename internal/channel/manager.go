// Package channel owns the duplex channel between a playback session and
// the classification backend: dialing, the announce handshake, heartbeat
// replies, and bounded automatic reconnection after abnormal closures.
package channel

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/models"
)

// State is the channel lifecycle state.
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	// DefaultReconnectDelay is the linear backoff base: the nth attempt
	// waits n times this long.
	DefaultReconnectDelay = 2 * time.Second
	// DefaultMaxReconnectAttempts bounds consecutive reconnects with no
	// intervening open state.
	DefaultMaxReconnectAttempts = 5

	defaultHandshakeTimeout = 10 * time.Second
	closeWriteTimeout       = time.Second
)

type Config struct {
	URL                  string
	SessionID            string
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
	HandshakeTimeout     time.Duration
}

func (c *Config) applyDefaults() {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = defaultHandshakeTimeout
	}
}

// Manager runs one websocket channel. A single supervisor goroutine owns
// the read loop and the reconnect schedule, so inbound delivery preserves
// arrival order and the message stream is closed exactly once.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	conn     *websocket.Conn
	state    State
	attempts int
	closed   bool

	writeMu sync.Mutex

	msgs      chan models.Message
	done      chan struct{}
	closeOnce sync.Once
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	cfg.applyDefaults()
	return &Manager{
		cfg:    cfg,
		logger: logger.With(zap.String("session_id", cfg.SessionID)),
		state:  StateClosed,
		msgs:   make(chan models.Message, 64),
		done:   make(chan struct{}),
	}
}

// Connect dials the backend, announces the session and starts the
// supervisor. An initial dial failure is returned to the caller; the
// retry budget only covers drops of a previously open channel.
func (m *Manager) Connect() error {
	m.setState(StateConnecting)

	conn, err := m.dial()
	if err != nil {
		m.setState(StateClosed)
		return fmt.Errorf("dialing channel: %w", err)
	}

	m.mu.Lock()
	m.conn = conn
	m.state = StateOpen
	m.mu.Unlock()

	m.announce(conn)
	go m.supervise(conn)
	return nil
}

// Messages yields inbound messages in arrival order. The channel is
// closed when the manager shuts down, cleanly or not.
func (m *Manager) Messages() <-chan models.Message {
	return m.msgs
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Open reports whether Send would currently transmit.
func (m *Manager) Open() bool {
	return m.State() == StateOpen
}

// Attempts returns the consecutive reconnect count since the last open.
func (m *Manager) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

// Send transmits best-effort: when the channel is not open the message is
// dropped, never queued. A stale sampling request has no replay value.
func (m *Manager) Send(msg models.Message) {
	m.mu.Lock()
	if m.state != StateOpen || m.conn == nil {
		m.mu.Unlock()
		return
	}
	conn := m.conn
	m.mu.Unlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		m.logger.Debug("send failed", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}

// Close tears the channel down with the normal closure code, which
// suppresses reconnection on both ends. Safe to call more than once.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		conn := m.conn
		m.state = StateClosed
		m.mu.Unlock()

		close(m.done)

		if conn != nil {
			m.writeMu.Lock()
			deadline := time.Now().Add(closeWriteTimeout)
			if err := conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session teardown"),
				deadline); err != nil {
				m.logger.Debug("writing close frame", zap.Error(err))
			}
			m.writeMu.Unlock()
			conn.Close()
		}
	})
	return nil
}

func (m *Manager) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	conn, _, err := dialer.Dial(m.cfg.URL, nil)
	return conn, err
}

func (m *Manager) announce(conn *websocket.Conn) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if err := conn.WriteJSON(models.Message{
		Type:      models.TypeConnect,
		SessionID: m.cfg.SessionID,
	}); err != nil {
		// The read loop will observe the broken connection.
		m.logger.Warn("announce failed", zap.Error(err))
	}
}

// supervise owns the connection for its whole life: read until closure,
// then either stop (clean close) or walk the linear backoff schedule
// until reconnected or the budget is exhausted.
func (m *Manager) supervise(conn *websocket.Conn) {
	defer close(m.msgs)

	for {
		if conn != nil {
			clean := m.readLoop(conn)
			conn.Close()
			if clean || m.isClosed() {
				m.setState(StateClosed)
				return
			}
		}

		m.mu.Lock()
		m.attempts++
		attempt := m.attempts
		m.mu.Unlock()

		if attempt > m.cfg.MaxReconnectAttempts {
			m.setState(StateFailed)
			m.logger.Error("reconnect budget exhausted",
				zap.Int("max_attempts", m.cfg.MaxReconnectAttempts))
			m.deliver(models.Message{
				Type:    models.TypeError,
				Message: fmt.Sprintf("channel failed after %d reconnect attempts", m.cfg.MaxReconnectAttempts),
			})
			return
		}

		m.setState(StateReconnecting)
		delay := time.Duration(attempt) * m.cfg.ReconnectDelay
		m.logger.Warn("scheduling reconnect",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-m.done:
			m.setState(StateClosed)
			return
		}

		m.setState(StateConnecting)
		next, err := m.dial()
		if err != nil {
			m.logger.Warn("reconnect dial failed", zap.Int("attempt", attempt), zap.Error(err))
			conn = nil
			continue
		}

		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			next.Close()
			return
		}
		m.conn = next
		m.state = StateOpen
		m.attempts = 0
		m.mu.Unlock()

		m.logger.Info("channel reconnected")
		m.announce(next)
		conn = next
	}
}

// readLoop delivers inbound messages until the connection drops. Returns
// true for a clean closure (normal code or local teardown), false for an
// abnormal one.
func (m *Manager) readLoop(conn *websocket.Conn) bool {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if m.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true
			}
			m.logger.Warn("channel closed abnormally", zap.Error(err))
			return false
		}

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			m.logger.Warn("dropping malformed message", zap.Error(err))
			continue
		}

		select {
		case m.msgs <- msg:
		case <-m.done:
			return true
		}
	}
}

func (m *Manager) deliver(msg models.Message) {
	select {
	case m.msgs <- msg:
	case <-m.done:
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	if !m.closed || s == StateClosed {
		m.state = s
	}
	m.mu.Unlock()
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
