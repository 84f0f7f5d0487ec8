package speech

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/numan-developer-2/Customer-Support-Agent/internal/model/chat"
	"github.com/numan-developer-2/Customer-Support-Agent/internal/service/devassistant"
	speechsvc "github.com/numan-developer-2/Customer-Support-Agent/internal/service/speech"
	"github.com/numan-developer-2/Customer-Support-Agent/pkg/utils"
)

const maxUploadSize = 32 << 20 // 32MB

// VoiceService 抽象语音业务，便于测试与替换实现
type VoiceService interface {
	Transcribe(audio []byte) (string, error)
	Respond(ctx context.Context, userID, userEmail, message string) (chat.Reply, error)
	AudioPath(conversationID string) (string, error)
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	voiceSvc VoiceService
}

// New 创建语音处理器
func New(voiceSvc VoiceService) *Handler {
	return &Handler{voiceSvc: voiceSvc}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/voice", h.handleVoice)
	r.Get("/audio/{conversationID}", h.handleAudio)
}

// handleVoice 处理语音消息：识别后按文本消息回复
func (h *Handler) handleVoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	if format := inferAudioFormat(header.Filename); format != "wav" {
		utils.RespondError(w, http.StatusUnsupportedMediaType, "unsupported audio format: "+format)
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	// 兼容旧客户端：身份字段也可能出现在查询参数里
	userID := formOrQuery(r, "user_id")
	userEmail := formOrQuery(r, "user_email")

	transcript, err := h.voiceSvc.Transcribe(audio)
	if err != nil {
		switch {
		case errors.Is(err, devassistant.ErrUnintelligible):
			utils.RespondError(w, http.StatusBadRequest, "Could not understand the audio")
		case errors.Is(err, speechsvc.ErrUnsupportedFormat):
			utils.RespondError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			log.Printf("[speech] transcribe error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error processing voice: "+err.Error())
		}
		return
	}

	log.Printf("[speech] voice message from user=%s: %s", userID, transcript)

	reply, err := h.voiceSvc.Respond(r.Context(), userID, userEmail, transcript)
	if err != nil {
		log.Printf("[speech] respond error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Error processing voice: "+err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleAudio 返回对话的语音回复
func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	path, err := h.voiceSvc.AudioPath(conversationID)
	if err != nil {
		switch {
		case errors.Is(err, devassistant.ErrAudioNotFound), errors.Is(err, devassistant.ErrInvalidReference):
			utils.RespondError(w, http.StatusNotFound, "Audio file not found")
		default:
			log.Printf("[speech] audio lookup error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error serving audio")
		}
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

func formOrQuery(r *http.Request, key string) string {
	if v := strings.TrimSpace(r.FormValue(key)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// inferAudioFormat 从文件名推断音频格式
func inferAudioFormat(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp3":
		return "mp3"
	case ".wav", "":
		return "wav"
	case ".webm":
		return "webm"
	case ".m4a":
		return "m4a"
	case ".aac":
		return "aac"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}
