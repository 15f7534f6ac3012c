package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChatReturnsReplyAndHTML(t *testing.T) {
	env := setupRouter(t, envOptions{})
	resp := env.postJSON(t, "/api/chat", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "What is CaaS?"}},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body struct {
		Reply     string `json:"reply"`
		ReplyHTML string `json:"reply_html"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "**Hello** from Prezent.Energy", body.Reply)
	require.Contains(t, body.ReplyHTML, "<strong>Hello</strong>")
	require.Equal(t, 1, env.llm.calls)
}

func TestChatValidation(t *testing.T) {
	env := setupRouter(t, envOptions{})
	cases := []struct {
		name string
		body interface{}
		msg  string
	}{
		{name: "missing", body: map[string]interface{}{}, msg: "messages array is required"},
		{name: "empty", body: map[string]interface{}{"messages": []interface{}{}}, msg: "messages array is required"},
		{name: "bad role", body: map[string]interface{}{
			"messages": []map[string]string{{"role": "system", "content": "hi"}},
		}, msg: "each message needs role and content"},
		{name: "blank content", body: map[string]interface{}{
			"messages": []map[string]string{{"role": "user", "content": "  "}},
		}, msg: "each message needs role and content"},
		{name: "too long", body: map[string]interface{}{
			"messages": []map[string]string{{"role": "user", "content": strings.Repeat("x", 2001)}},
		}, msg: "conversation exceeds 2000 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := env.postJSON(t, "/api/chat", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.Code)
			var body struct {
				Error string `json:"error"`
			}
			decodeJSON(t, resp, &body)
			require.Equal(t, tc.msg, body.Error)
		})
	}
	require.Zero(t, env.llm.calls)
}

func TestChatUpstreamFailureIs503(t *testing.T) {
	env := setupRouter(t, envOptions{})
	env.llm.err = errUpstream
	resp := env.postJSON(t, "/api/chat", map[string]interface{}{
		"messages": []map[string]string{{"role": "user", "content": "hello"}},
	})
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	require.JSONEq(t, `{"error":"AI service unavailable"}`, resp.Body.String())
	require.NotContains(t, resp.Body.String(), errUpstream.Error())
}

func TestNewsQuery(t *testing.T) {
	env := setupRouter(t, envOptions{})
	env.llm.reply = "NEVI funding update"
	resp := env.postJSON(t, "/api/news-query", map[string]interface{}{
		"query": "Latest NEVI news?",
		"history": []map[string]string{
			{"role": "user", "content": "Hi"},
			{"role": "assistant", "content": "Hello"},
		},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var body struct {
		Answer     string `json:"answer"`
		AnswerHTML string `json:"answer_html"`
	}
	decodeJSON(t, resp, &body)
	require.Equal(t, "NEVI funding update", body.Answer)
	require.Contains(t, body.AnswerHTML, "<p>NEVI funding update</p>")
}

func TestNewsQueryRequiresQuery(t *testing.T) {
	env := setupRouter(t, envOptions{})
	req := httptest.NewRequest(http.MethodPost, "/api/news-query", strings.NewReader(`{"query":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	resp := env.do(t, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.JSONEq(t, `{"error":"query is required"}`, resp.Body.String())
}
