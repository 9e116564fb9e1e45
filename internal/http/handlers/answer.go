package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productintel-backend/internal/http/response"
	"github.com/yungbote/productintel-backend/internal/platform/apierr"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type AnswerHandler struct {
	log       *logger.Logger
	retriever RetrieverService
	composer  ComposerService
	cache     AnswerCache // nil when REDIS_ADDR is unset
}

func NewAnswerHandler(log *logger.Logger, retriever RetrieverService, composer ComposerService, cache AnswerCache) *AnswerHandler {
	return &AnswerHandler{
		log:       log.With("handler", "AnswerHandler"),
		retriever: retriever,
		composer:  composer,
		cache:     cache,
	}
}

type answerRequest struct {
	Question       string `json:"question"`
	UseExternalLLM *bool  `json:"use_external_llm"`
}

// POST /products/:id/answer
// body: { "question": "...", "use_external_llm": true }
func (h *AnswerHandler) Answer(c *gin.Context) {
	productID := c.Param("id")

	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAppError(c, apierr.InvalidInput("invalid request body", err))
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		response.RespondAppError(c, apierr.InvalidInput("question is required", nil))
		return
	}
	useLLM := req.UseExternalLLM == nil || *req.UseExternalLLM

	ctx := c.Request.Context()

	// Extractive answers are cheap, only LLM answers are worth caching.
	if useLLM && h.cache != nil {
		if cached, ok := h.cache.Get(ctx, productID, req.Question); ok {
			h.log.Debug("Answer cache hit", "product_id", productID)
			response.RespondOK(c, cached)
			return
		}
	}

	passages, err := h.retriever.Retrieve(ctx, productID, req.Question)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	result, err := h.composer.Compose(ctx, req.Question, passages, useLLM)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	if useLLM && h.cache != nil && len(passages) > 0 {
		h.cache.Set(ctx, productID, req.Question, result)
	}
	response.RespondOK(c, result)
}
