package handler

import (
	"github.com/fabrictrade/backend/internal/application/assistant"
	"github.com/gin-gonic/gin"
)

// AssistantHandler answers account questions through the configured language model
type AssistantHandler struct {
	BaseHandler
	service *assistant.Service
}

// NewAssistantHandler creates a new AssistantHandler
func NewAssistantHandler(service *assistant.Service) *AssistantHandler {
	return &AssistantHandler{service: service}
}

// Chat godoc
// @Summary      Ask the account assistant
// @Description  Customers get answers about their own bills only. Staff questions are answered against all customers.
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Param        request body assistant.ChatRequest true "Question"
// @Success      200 {object} dto.Response{data=assistant.ChatResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /assistant/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req assistant.ChatRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scope, ok := h.customerScope(c)
	if !ok {
		return
	}
	resp, err := h.service.Chat(c.Request.Context(), req, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
