package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Info(string, port.Fields)                 {}
func (discardLogger) Warn(string, port.Fields)                 {}
func (discardLogger) Error(string, error, port.Fields)         {}
func (discardLogger) Debug(string, port.Fields)                {}
func (d discardLogger) WithFields(port.Fields) port.LoggerPort { return d }

func receive(t *testing.T, ch ClientChannel) string {
	t.Helper()
	select {
	case frame := <-ch:
		return string(frame)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestSSENotifier_DeliversToEveryStreamOfTheUser(t *testing.T) {
	n := NewSSENotifier(discardLogger{})
	defer n.Close()

	alice, bob := uuid.New(), uuid.New()
	tab1 := n.AddClient(alice)
	tab2 := n.AddClient(alice)
	other := n.AddClient(bob)
	assert.Equal(t, 2, n.ClientCount(alice))

	n.Notify(context.Background(), domain.UserEvent{
		Type:   "boosting_expiry_reminder",
		UserID: alice,
		Data:   map[string]string{"post_id": "7"},
	})

	for _, ch := range []ClientChannel{tab1, tab2} {
		frame := receive(t, ch)
		assert.True(t, strings.HasPrefix(frame, "event: boosting_expiry_reminder\n"), frame)
		assert.Contains(t, frame, `data: {"post_id":"7"}`)
		assert.True(t, strings.HasSuffix(frame, "\n\n"))
	}

	select {
	case frame := <-other:
		t.Fatalf("unexpected frame for another user: %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSENotifier_RemoveClient(t *testing.T) {
	n := NewSSENotifier(discardLogger{})
	defer n.Close()

	user := uuid.New()
	first := n.AddClient(user)
	second := n.AddClient(user)

	n.RemoveClient(user, first)
	assert.Equal(t, 1, n.ClientCount(user))

	n.RemoveClient(user, second)
	assert.Equal(t, 0, n.ClientCount(user))

	n.RemoveClient(user, second)
	assert.Equal(t, 0, n.ClientCount(user))
}

func TestSSENotifier_NotifyAfterCloseDoesNotBlock(t *testing.T) {
	n := NewSSENotifier(discardLogger{})
	n.Close()
	n.Close()

	select {
	case <-n.Done():
	default:
		t.Fatal("Done is not closed after Close")
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBufferSize*2; i++ {
			n.Notify(context.Background(), domain.UserEvent{Type: "x", UserID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "Notify blocked after Close")
	}
}
