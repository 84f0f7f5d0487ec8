package chat

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/devassistant"
	"github.com/numan-developer-2/Customer-Support-Agent/pkg/utils"
)

const maxHistoryLimit = 100

// Assistant 抽象对话服务，便于测试替换
type Assistant interface {
	Respond(ctx context.Context, userID, userEmail, message string) (chat.Reply, error)
	Conversations(userID, userEmail string, limit int) []chat.ConversationRecord
}

// Handler 文本对话的HTTP处理器
type Handler struct {
	assistant Assistant
}

// New 创建对话处理器
func New(assistant Assistant) *Handler {
	return &Handler{assistant: assistant}
}

// RegisterRoutes 注册对话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/conversations", h.handleConversations)
}

// handleChat 处理文本消息
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.TextRequest
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.assistant.Respond(r.Context(), payload.UserID, payload.UserEmail, payload.Message)
	if err != nil {
		if errors.Is(err, devassistant.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[chat] respond failed for user=%s: %v", payload.UserID, err)
		utils.RespondError(w, http.StatusInternalServerError, "Error processing chat: "+err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleConversations 返回历史对话
func (h *Handler) handleConversations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			utils.RespondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records := h.assistant.Conversations(query.Get("user_id"), query.Get("user_email"), limit)
	utils.RespondJSON(w, http.StatusOK, chat.ConversationList{Conversations: records})
}
