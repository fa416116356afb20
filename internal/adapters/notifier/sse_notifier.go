package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
)

const (
	eventBufferSize  = 100
	clientBufferSize = 32
)

// ClientChannel receives pre-formatted SSE frames for one open stream.
type ClientChannel chan []byte

type eventWithContext struct {
	ctx   context.Context
	event domain.UserEvent
}

// SSENotifier fans user events out to every open stream of that user.
// A user may hold several streams (tabs, devices); slow streams lose events instead of blocking others.
type SSENotifier struct {
	clients map[uuid.UUID][]ClientChannel
	mu      sync.RWMutex

	eventChan chan eventWithContext
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	logger port.LoggerPort
}

func NewSSENotifier(baseLogger port.LoggerPort) *SSENotifier {
	n := &SSENotifier{
		clients:   make(map[uuid.UUID][]ClientChannel),
		eventChan: make(chan eventWithContext, eventBufferSize),
		done:      make(chan struct{}),
		logger:    baseLogger.WithFields(port.Fields{"component": "SSENotifier"}),
	}

	n.wg.Add(1)
	go n.dispatcher()

	return n
}

func (n *SSENotifier) dispatcher() {
	defer n.wg.Done()
	n.logger.Debug("Notifier dispatcher started.", nil)

	for {
		select {
		case <-n.done:
			n.logger.Debug("Notifier dispatcher stopped.", nil)
			return
		case pkg := <-n.eventChan:
			n.dispatch(pkg.ctx, pkg.event)
		}
	}
}

func (n *SSENotifier) dispatch(ctx context.Context, event domain.UserEvent) {
	eventLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "SSENotifier.dispatcher",
		"event_type": event.Type,
		"user_id":    event.UserID,
	})

	frame, err := formatFrame(event)
	if err != nil {
		eventLogger.Error("Failed to marshal event", err, nil)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	channels, found := n.clients[event.UserID]
	if !found {
		eventLogger.Debug("No active streams for user, event dropped.", nil)
		return
	}
	for _, ch := range channels {
		select {
		case ch <- frame:
		default:
			eventLogger.Warn("Stream buffer is full, skipping.", nil)
		}
	}
	eventLogger.Debug("Event dispatched", port.Fields{"streams": len(channels)})
}

func formatFrame(event domain.UserEvent) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, data)), nil
}

// Notify never blocks the caller: when the dispatcher is saturated the event is dropped.
func (n *SSENotifier) Notify(ctx context.Context, event domain.UserEvent) {
	select {
	case <-n.done:
		return
	default:
	}

	select {
	case n.eventChan <- eventWithContext{ctx: ctx, event: event}:
	default:
		contextkeys.LoggerFromContext(ctx).Warn("Notifier queue is full, live event dropped.", port.Fields{
			"event_type": event.Type,
			"user_id":    event.UserID,
		})
	}
}

// AddClient registers a new stream for userID.
func (n *SSENotifier) AddClient(userID uuid.UUID) ClientChannel {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(ClientChannel, clientBufferSize)
	n.clients[userID] = append(n.clients[userID], ch)

	n.logger.Info("Stream opened", port.Fields{
		"user_id":      userID,
		"user_streams": len(n.clients[userID]),
	})
	return ch
}

func (n *SSENotifier) RemoveClient(userID uuid.UUID, ch ClientChannel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	channels, found := n.clients[userID]
	if !found {
		return
	}
	kept := channels[:0]
	for _, c := range channels {
		if c != ch {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(n.clients, userID)
	} else {
		n.clients[userID] = kept
	}
	n.logger.Info("Stream closed", port.Fields{"user_id": userID, "remaining_streams": len(kept)})
}

// ClientCount reports the number of open streams of userID.
func (n *SSENotifier) ClientCount(userID uuid.UUID) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.clients[userID])
}

// Done is closed once Close has been called; open streams should end when it is.
func (n *SSENotifier) Done() <-chan struct{} {
	return n.done
}

// Close stops the dispatcher and signals Done.
func (n *SSENotifier) Close() {
	n.closeOnce.Do(func() {
		close(n.done)
	})
	n.wg.Wait()
}
