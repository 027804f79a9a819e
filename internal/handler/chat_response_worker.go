package handler

import (
	"context"
	"errors"
	"fmt"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/websocket"
	"ai-docchat-be/pkg/chatbot"
	"ai-docchat-be/pkg/events"
	pktNats "ai-docchat-be/pkg/nats"
)

// ChatResponseWorker consumes prompt events off the durable bus, runs the
// orchestrator, and relays each answer fragment back out: one response event
// per fragment plus a websocket push for connected browsers.
type ChatResponseWorker struct {
	subscriber        *pktNats.Subscriber
	publisher         *pktNats.Publisher
	bot               *chatbot.Chatbot
	hub               *websocket.Hub
	pastMessagesLimit int
	logger            logger.ILogger
}

func NewChatResponseWorker(
	sub *pktNats.Subscriber,
	pub *pktNats.Publisher,
	bot *chatbot.Chatbot,
	hub *websocket.Hub,
	pastMessagesLimit int,
	log logger.ILogger,
) *ChatResponseWorker {
	return &ChatResponseWorker{
		subscriber:        sub,
		publisher:         pub,
		bot:               bot,
		hub:               hub,
		pastMessagesLimit: pastMessagesLimit,
		logger:            log,
	}
}

// Start begins listening for prompt events with a durable consumer.
func (w *ChatResponseWorker) Start() {
	subject := "events." + events.ChatPromptedEventType
	err := w.subscriber.Subscribe(subject, "chat-response-worker", w.handlePrompt)
	if err != nil {
		w.logger.Error("ChatResponseWorker", "Failed to start prompt subscriber", map[string]interface{}{"error": err})
		return
	}
	w.logger.Info("ChatResponseWorker", "Listening for chat prompts", map[string]interface{}{"subject": subject})
}

func (w *ChatResponseWorker) handlePrompt(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	sessionId, _ := payload["session_id"].(string)
	messageId, _ := payload["message_id"].(string)
	prompt, _ := payload["prompt"].(string)

	if sessionId == "" || prompt == "" {
		w.logger.Warn("ChatResponseWorker", "Dropping malformed prompt event", map[string]interface{}{"payload": payload})
		return nil // Ack: retrying cannot fix a malformed event
	}

	fragments, err := w.bot.CompleteAnswer(ctx, sessionId, messageId, prompt, w.pastMessagesLimit)
	if err != nil {
		if errors.Is(err, chatbot.ErrDuplicateMessage) {
			w.logger.Info("ChatResponseWorker", "Skipping redelivered prompt", map[string]interface{}{
				"session_id": sessionId,
				"message_id": messageId,
			})
			return nil // Already answered; ack the redelivery
		}
		w.logger.Error("ChatResponseWorker", "Failed to start answer", map[string]interface{}{
			"session_id": sessionId,
			"message_id": messageId,
			"error":      err.Error(),
		})
		return err // Nack: pre-stream failures are retriable
	}

	for fragment := range fragments {
		res := dto.ChatFragmentResponse{
			SessionId:  sessionId,
			MessageId:  messageId,
			Text:       fragment.Text,
			IsFinal:    fragment.IsFinal,
			Confidence: fragment.Confidence,
			Source:     fragment.Source,
		}
		if fragment.Err != nil {
			res.Error = fragment.Err.Error()
			res.IsFinal = true
		}

		if w.hub != nil {
			w.hub.SendFragment(res)
		}
		if w.publisher != nil {
			evt := events.NewChatResponseStreamedEvent(sessionId, messageId, res.Text, res.IsFinal, res.Confidence, res.Source, res.Error)
			if err := w.publisher.Publish(ctx, evt); err != nil {
				w.logger.Warn("ChatResponseWorker", "Failed to publish response fragment", map[string]interface{}{
					"session_id": sessionId,
					"message_id": messageId,
					"error":      err.Error(),
				})
			}
		}

		if fragment.Err != nil {
			// The client saw the failure fragment; the exchange was never
			// recorded, so a retry would answer from scratch. Ack to avoid
			// double-streaming a partial answer.
			w.logger.Error("ChatResponseWorker", "Answer stream failed", map[string]interface{}{
				"session_id": sessionId,
				"message_id": messageId,
				"error":      fragment.Err.Error(),
			})
			return nil
		}
	}

	w.logger.Info("ChatResponseWorker", fmt.Sprintf("Answered prompt for session %s", sessionId), map[string]interface{}{
		"message_id": messageId,
	})
	return nil
}
