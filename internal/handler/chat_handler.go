package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prezentenergy/caasweb/internal/ai"
	"github.com/prezentenergy/caasweb/internal/pkg/response"
	"github.com/prezentenergy/caasweb/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Messages []ai.Message `json:"messages"`
}

type newsQueryRequest struct {
	Query   string       `json:"query"`
	History []ai.Message `json:"history"`
}

// Chat proxies a sales conversation. A malformed body counts as a missing conversation.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = chatRequest{}
	}
	reply, err := h.chat.Chat(c.Request.Context(), req.Messages)
	if err != nil {
		handleAPIError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"reply": reply.Text, "reply_html": reply.HTML})
}

func (h *ChatHandler) NewsQuery(c *gin.Context) {
	var req newsQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = newsQueryRequest{}
	}
	answer, err := h.chat.NewsQuery(c.Request.Context(), req.Query, req.History)
	if err != nil {
		handleAPIError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"answer": answer.Text, "answer_html": answer.HTML})
}
