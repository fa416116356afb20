package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const reconnectInterval = 10 * time.Second

// ConnectionManager owns one AMQP connection shared by every channel of the process
// and redials it in the background after the broker drops it.
type ConnectionManager struct {
	url    string
	mu     sync.RWMutex
	conn   *amqp.Connection
	logger Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewConnectionManager dials once; an unreachable broker is a startup error.
func NewConnectionManager(cfg Config, logger Logger) (*ConnectionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewNoopLogger()
	}

	m := &ConnectionManager{url: cfg.URL, logger: logger, stop: make(chan struct{})}
	if _, err := m.connection(); err != nil {
		return nil, fmt.Errorf("initial connection failed: %w", err)
	}
	go m.watch()

	return m, nil
}

func (m *ConnectionManager) connection() (*amqp.Connection, error) {
	m.mu.RLock()
	if m.conn != nil && !m.conn.IsClosed() {
		conn := m.conn
		m.mu.RUnlock()
		return conn, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil && !m.conn.IsClosed() {
		return m.conn, nil
	}

	m.logger.Debug("Dialing RabbitMQ")
	conn, err := amqp.Dial(m.url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}
	m.conn = conn
	m.logger.Info("Connected to RabbitMQ")
	return conn, nil
}

// GetChannel opens a new channel on the shared connection.
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.connection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) watch() {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}

		m.mu.RLock()
		healthy := m.conn == nil || !m.conn.IsClosed()
		m.mu.RUnlock()
		if healthy {
			continue
		}

		m.logger.Warn("RabbitMQ connection lost, reconnecting")
		if _, err := m.connection(); err != nil {
			m.logger.Error(err, "Reconnect failed")
		}
	}
}

// Close stops the reconnect loop and closes the connection.
func (m *ConnectionManager) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.conn.IsClosed() {
		return nil
	}
	if err := m.conn.Close(); err != nil {
		m.logger.Error(err, "Failed to close RabbitMQ connection")
		return err
	}
	m.logger.Debug("RabbitMQ connection closed")
	return nil
}
