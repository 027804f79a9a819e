package service

import (
	"context"
	"fmt"

	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/logger"
	"ai-docchat-be/internal/repository/unitofwork"
	"ai-docchat-be/pkg/chatbot"
	"ai-docchat-be/pkg/events"
	"ai-docchat-be/pkg/nats"

	"github.com/google/uuid"
)

type IChatService interface {
	// SendPrompt publishes the prompt onto the event bus and returns the
	// message id; the answer arrives over the session's websocket.
	SendPrompt(ctx context.Context, req *dto.SendChatRequest) (*dto.ChatFragmentResponse, error)
	// Complete answers synchronously, draining the stream into one response.
	Complete(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	History(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error)
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	bot               *chatbot.Chatbot
	eventPublisher    *nats.Publisher
	pastMessagesLimit int
	log               logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	bot *chatbot.Chatbot,
	eventPublisher *nats.Publisher,
	pastMessagesLimit int,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		bot:               bot,
		eventPublisher:    eventPublisher,
		pastMessagesLimit: pastMessagesLimit,
		log:               log,
	}
}

func (s *chatService) SendPrompt(ctx context.Context, req *dto.SendChatRequest) (*dto.ChatFragmentResponse, error) {
	if s.eventPublisher == nil {
		return nil, fmt.Errorf("event bus unavailable")
	}

	messageId := uuid.New().String()
	evt := events.NewChatPromptedEvent(req.SessionId, messageId, req.Prompt)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		return nil, fmt.Errorf("publish prompt: %w", err)
	}

	s.log.Info("chat", "prompt published", map[string]interface{}{
		"session_id": req.SessionId,
		"message_id": messageId,
	})

	return &dto.ChatFragmentResponse{
		SessionId: req.SessionId,
		MessageId: messageId,
	}, nil
}

func (s *chatService) Complete(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	messageId := uuid.New().String()
	fragments, err := s.bot.CompleteAnswer(ctx, req.SessionId, messageId, req.Prompt, s.pastMessagesLimit)
	if err != nil {
		return nil, err
	}

	res := &dto.SendChatResponse{
		SessionId: req.SessionId,
		MessageId: messageId,
	}
	var answer []byte
	for fragment := range fragments {
		if fragment.Err != nil {
			return nil, fragment.Err
		}
		answer = append(answer, fragment.Text...)
		res.Confidence = fragment.Confidence
		res.Source = fragment.Source
	}
	res.Answer = string(answer)
	return res, nil
}

func (s *chatService) History(ctx context.Context, sessionId string) (*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	logs, err := uow.ChatLogRepository().QueryBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ChatHistoryEntryResponse, len(logs))
	for i, l := range logs {
		entries[i] = dto.ChatHistoryEntryResponse{
			MessageId:       l.MessageId.String(),
			Question:        l.Question,
			Answer:          l.Answer,
			ConfidenceScore: l.ConfidenceScore,
			Source:          l.Source,
			AskedAt:         l.RequestTimestamp,
		}
	}

	return &dto.GetChatHistoryResponse{
		SessionId: sessionId,
		Entries:   entries,
	}, nil
}
