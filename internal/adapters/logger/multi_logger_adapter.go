package logger_adapter

import (
	"errors"

	"findar-backend/internal/core/port"
)

// MultiLoggerAdapter writes every record to each of its sinks in order.
type MultiLoggerAdapter struct {
	sinks []port.LoggerPort
}

// NewMultiLoggerAdapter ignores nil sinks. With a single sink left it returns that sink unchanged.
func NewMultiLoggerAdapter(sinks ...port.LoggerPort) (port.LoggerPort, error) {
	active := make([]port.LoggerPort, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}

	switch len(active) {
	case 0:
		return nil, errors.New("multilogger: at least one logger is required")
	case 1:
		return active[0], nil
	}
	return &MultiLoggerAdapter{sinks: active}, nil
}

func (m *MultiLoggerAdapter) broadcast(write func(port.LoggerPort)) {
	for _, s := range m.sinks {
		write(s)
	}
}

func (m *MultiLoggerAdapter) Debug(msg string, fields port.Fields) {
	m.broadcast(func(s port.LoggerPort) { s.Debug(msg, fields) })
}

func (m *MultiLoggerAdapter) Info(msg string, fields port.Fields) {
	m.broadcast(func(s port.LoggerPort) { s.Info(msg, fields) })
}

func (m *MultiLoggerAdapter) Warn(msg string, fields port.Fields) {
	m.broadcast(func(s port.LoggerPort) { s.Warn(msg, fields) })
}

func (m *MultiLoggerAdapter) Error(msg string, err error, fields port.Fields) {
	m.broadcast(func(s port.LoggerPort) { s.Error(msg, err, fields) })
}

// WithFields binds fields on every sink and keeps the sink order.
func (m *MultiLoggerAdapter) WithFields(fields port.Fields) port.LoggerPort {
	bound := &MultiLoggerAdapter{sinks: make([]port.LoggerPort, len(m.sinks))}
	for i, s := range m.sinks {
		bound.sinks[i] = s.WithFields(fields)
	}
	return bound
}
