package rest

import (
	"fmt"
	"net/http"
	"time"

	"findar-backend/internal/adapters/notifier"
	"findar-backend/internal/contextkeys"
	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"
	"findar-backend/internal/core/port/usecases_port"
)

const defaultKeepAliveInterval = 15 * time.Second

type NotificationHandler struct {
	registerUC usecases_port.RegisterDeviceUseCasePort
	sendUC     usecases_port.SendNotificationUseCasePort
	notifier   *notifier.SSENotifier

	keepAlive time.Duration
}

func NewNotificationHandler(
	registerUC usecases_port.RegisterDeviceUseCasePort,
	sendUC usecases_port.SendNotificationUseCasePort,
	notifier *notifier.SSENotifier,
) *NotificationHandler {
	return &NotificationHandler{
		registerUC: registerUC,
		sendUC:     sendUC,
		notifier:   notifier,
		keepAlive:  defaultKeepAliveInterval,
	}
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RegisterDevice"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	var req RegisterDeviceRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.registerUC.Execute(r.Context(), userID, req.Token); err != nil {
		writeUseCaseError(w, logger, err, "Failed to register device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendToDevice handles POST /api/v1/internal/notifications/send.
func (h *NotificationHandler) SendToDevice(w http.ResponseWriter, r *http.Request) {
	var req SendNotificationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.send(w, r, domain.TokenRecipient(req.Token), domain.PushMessage{Title: req.Title, Body: req.Body, Data: req.Data})
}

// SendToTopic handles POST /api/v1/internal/notifications/send-to-topic.
func (h *NotificationHandler) SendToTopic(w http.ResponseWriter, r *http.Request) {
	var req SendToTopicRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	h.send(w, r, domain.TopicRecipient(req.Topic), domain.PushMessage{Title: req.Title, Body: req.Body, Data: req.Data})
}

func (h *NotificationHandler) send(w http.ResponseWriter, r *http.Request, recipient domain.Recipient, msg domain.PushMessage) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":   "SendNotification",
		"recipient": recipient.String(),
	})

	result, err := h.sendUC.Execute(r.Context(), recipient, msg)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to send notification")
		return
	}
	RespondWithJSON(w, http.StatusOK, DeliveryResponse{Result: string(result)})
}

// Stream handles GET /api/v1/notifications/stream as a Server-Sent Events channel.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "Stream"})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "User ID not found in context")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteJSONError(w, http.StatusInternalServerError, "Streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := h.notifier.AddClient(userID)
	defer h.notifier.RemoveClient(userID, clientChan)

	fmt.Fprintf(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case frame := <-clientChan:
			if _, err := w.Write(frame); err != nil {
				logger.Warn("Error writing to client, closing stream", port.Fields{"error": err.Error()})
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			logger.Debug("Stream client disconnected.", nil)
			return

		case <-h.notifier.Done():
			logger.Debug("Notifier closed, ending stream.", nil)
			return
		}
	}
}
