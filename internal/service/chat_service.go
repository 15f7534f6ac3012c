package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/ai"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

// Completer is the model call behind the chat endpoints; *ai.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system string, messages []ai.Message, maxTokens int) (string, error)
}

type ChatConfig struct {
	ChatMaxTokens int
	NewsMaxTokens int
	MaxInputChars int
}

type ChatReply struct {
	Text string
	HTML string
}

type ChatService struct {
	llm      Completer
	cfg      ChatConfig
	renderer *replyRenderer
}

func NewChatService(llm Completer, cfg ChatConfig) *ChatService {
	return &ChatService{llm: llm, cfg: cfg, renderer: newReplyRenderer()}
}

// Chat answers the latest turn of a sales conversation.
func (s *ChatService) Chat(ctx context.Context, messages []ai.Message) (*ChatReply, error) {
	if len(messages) == 0 {
		return nil, appErr.Invalid("messages array is required")
	}
	if err := s.checkConversation(messages); err != nil {
		return nil, err
	}
	return s.complete(ctx, "chat", salesSystemPrompt, messages, s.cfg.ChatMaxTokens)
}

// NewsQuery answers a news or regulatory question, optionally following earlier turns.
func (s *ChatService) NewsQuery(ctx context.Context, query string, history []ai.Message) (*ChatReply, error) {
	if strings.TrimSpace(query) == "" {
		return nil, appErr.Invalid("query is required")
	}
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: query})
	if err := s.checkConversation(messages); err != nil {
		return nil, err
	}
	return s.complete(ctx, "news", newsSystemPrompt, messages, s.cfg.NewsMaxTokens)
}

func (s *ChatService) checkConversation(messages []ai.Message) error {
	total := 0
	for _, msg := range messages {
		if (msg.Role != ai.RoleUser && msg.Role != ai.RoleAssistant) || strings.TrimSpace(msg.Content) == "" {
			return appErr.Invalid("each message needs role and content")
		}
		total += len([]rune(msg.Content))
	}
	if s.cfg.MaxInputChars > 0 && total > s.cfg.MaxInputChars {
		return appErr.Invalid(fmt.Sprintf("conversation exceeds %d characters", s.cfg.MaxInputChars))
	}
	return nil
}

func (s *ChatService) complete(ctx context.Context, kind, system string, messages []ai.Message, maxTokens int) (*ChatReply, error) {
	text, err := s.llm.Complete(ctx, system, messages, maxTokens)
	if err != nil {
		var aerr *ai.Error
		fields := []zap.Field{zap.String("endpoint", kind), zap.String("kind", string(ai.KindOf(err))), zap.Error(err)}
		if errors.As(err, &aerr) && aerr.Status != 0 {
			fields = append(fields, zap.Int("status", aerr.Status))
		}
		logutil.GetLogger(ctx).Error("ai call failed", fields...)
		return nil, appErr.ErrServiceUnavailable
	}
	html, err := s.renderer.Render(text)
	if err != nil {
		logutil.GetLogger(ctx).Warn("render ai reply failed", zap.Error(err))
		html = ""
	}
	return &ChatReply{Text: text, HTML: html}, nil
}
