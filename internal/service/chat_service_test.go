package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prezentenergy/caasweb/internal/ai"
	appErr "github.com/prezentenergy/caasweb/internal/pkg/errors"
)

type fakeCompleter struct {
	reply     string
	err       error
	system    string
	messages  []ai.Message
	maxTokens int
}

func (f *fakeCompleter) Complete(ctx context.Context, system string, messages []ai.Message, maxTokens int) (string, error) {
	f.system, f.messages, f.maxTokens = system, messages, maxTokens
	return f.reply, f.err
}

func newChatService(llm Completer) *ChatService {
	return NewChatService(llm, ChatConfig{ChatMaxTokens: 1024, NewsMaxTokens: 1500, MaxInputChars: 100})
}

func TestChatForwardsConversation(t *testing.T) {
	llm := &fakeCompleter{reply: "**Starter** is $35/session"}
	reply, err := newChatService(llm).Chat(bg, []ai.Message{
		{Role: ai.RoleUser, Content: "pricing?"},
		{Role: ai.RoleAssistant, Content: "which plan?"},
		{Role: ai.RoleUser, Content: "starter"},
	})
	require.NoError(t, err)
	require.Equal(t, "**Starter** is $35/session", reply.Text)
	require.Contains(t, reply.HTML, "<strong>Starter</strong>")
	require.Equal(t, 1024, llm.maxTokens)
	require.Equal(t, salesSystemPrompt, llm.system)
	require.Len(t, llm.messages, 3)
}

func TestChatValidation(t *testing.T) {
	svc := newChatService(&fakeCompleter{reply: "x"})
	_, err := svc.Chat(bg, nil)
	require.Equal(t, "messages array is required", appErr.Message(err, ""))

	_, err = svc.Chat(bg, []ai.Message{{Role: "system", Content: "x"}})
	require.True(t, errors.Is(err, appErr.ErrInvalid))

	_, err = svc.Chat(bg, []ai.Message{{Role: ai.RoleUser, Content: "  "}})
	require.True(t, errors.Is(err, appErr.ErrInvalid))

	_, err = svc.Chat(bg, []ai.Message{{Role: ai.RoleUser, Content: strings.Repeat("a", 101)}})
	require.True(t, errors.Is(err, appErr.ErrInvalid))
}

func TestNewsQueryAppendsQuery(t *testing.T) {
	llm := &fakeCompleter{reply: "LCFS update"}
	reply, err := newChatService(llm).NewsQuery(bg, "What about LCFS?", []ai.Message{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "hello"},
	})
	require.NoError(t, err)
	require.Equal(t, "LCFS update", reply.Text)
	require.Equal(t, 1500, llm.maxTokens)
	require.Equal(t, newsSystemPrompt, llm.system)
	require.Len(t, llm.messages, 3)
	require.Equal(t, ai.Message{Role: ai.RoleUser, Content: "What about LCFS?"}, llm.messages[2])
}

func TestNewsQueryRequiresQuery(t *testing.T) {
	_, err := newChatService(&fakeCompleter{}).NewsQuery(bg, "   ", nil)
	require.Equal(t, "query is required", appErr.Message(err, ""))
}

func TestChatUpstreamFailureIsUnavailable(t *testing.T) {
	llm := &fakeCompleter{err: &ai.Error{Provider: "anthropic", Kind: ai.KindRateLimit, Status: 429}}
	_, err := newChatService(llm).Chat(bg, []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	require.True(t, errors.Is(err, appErr.ErrServiceUnavailable))
}

func TestReplyRendererDropsRawHTML(t *testing.T) {
	out, err := newReplyRenderer().Render("hi <script>alert(1)</script>")
	require.NoError(t, err)
	require.NotContains(t, out, "<script>")
}
