package handlers

import (
	"io"
	"net/http"

	apperrors "github.com/Namenomeaning/chemistry-chatbot/errors"
	"github.com/Namenomeaning/chemistry-chatbot/pipeline"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxImageBytes bounds uploaded structure diagrams.
const maxImageBytes = 8 << 20

type ChatHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

type ChatRequest struct {
	Message  string `form:"message"`
	ThreadID string `form:"thread_id"`
}

type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
}

func NewChatHandler(p *pipeline.Pipeline, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		pipeline: p,
		logger:   logger,
	}
}

// Chat accepts a multipart form with an optional message, an optional PNG
// image and an optional thread_id. A missing thread_id starts a new thread.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Failed to bind chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	image, ok := h.readImage(c)
	if !ok {
		return
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.New().String()
	}

	answer, err := h.pipeline.Run(c.Request.Context(), threadID, req.Message, image)
	if err != nil {
		switch {
		case apperrors.IsInvalidInput(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": "text or image required"})
		case apperrors.IsStorageUnavailable(err):
			h.logger.Error("Conversation storage unavailable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		default:
			h.logger.Error("Chat turn failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		ThreadID: threadID,
		Text:     answer.Text,
		ImageURL: answer.DiagramURL,
		AudioURL: answer.PronunciationURL,
	})
}

func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readImage pulls the optional image part from the form. A false return
// means the response has already been written.
func (h *ChatHandler) readImage(c *gin.Context) ([]byte, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		// No image part attached.
		return nil, true
	}
	if file.Size > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
		return nil, false
	}

	f, err := file.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded image", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		h.logger.Error("Failed to read uploaded image", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
		return nil, false
	}
	return data, true
}
