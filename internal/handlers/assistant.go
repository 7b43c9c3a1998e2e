// internal/handlers/assistant.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"devtogether-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	assistantService *services.AssistantService
}

type AssistantChatRequest struct {
	Messages []services.ChatMessage `json:"messages" binding:"required,min=1,max=40,dive"`
}

func NewAssistantHandler(assistantService *services.AssistantService) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
	}
}

// Chat - хід розмови з асистентом створення проєкту. Стан розмови
// тримає клієнт, сервер щоразу отримує повний транскрипт
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req AssistantChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	reply, err := h.assistantService.Chat(ctx, req.Messages)
	if err != nil {
		h.writeAssistantError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply": reply,
	})
}

// Finalize завершує розмову та повертає чернетку проєкту для форми створення
func (h *AssistantHandler) Finalize(c *gin.Context) {
	var req AssistantChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	draft, err := h.assistantService.Finalize(ctx, req.Messages)
	if err != nil {
		h.writeAssistantError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"draft": draft,
	})
}

// GetAllowedTechnologies віддає allow-list технологій для клієнтської форми
func (h *AssistantHandler) GetAllowedTechnologies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"technologies": services.AllowedTechnologies,
	})
}

func (h *AssistantHandler) writeAssistantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAssistantNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Assistant is not available",
		})
	case errors.Is(err, services.ErrDraftParse):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Assistant returned an unusable reply, try again",
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Assistant request failed",
			"details": err.Error(),
		})
	}
}
