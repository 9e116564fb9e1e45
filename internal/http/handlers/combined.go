package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/http/response"
	"github.com/yungbote/productintel-backend/internal/platform/apierr"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

const answerNoRecognizedProduct = "Cannot answer question: product not recognized from image."

type CombinedHandler struct {
	log       *logger.Logger
	ocr       OCRService
	matcher   MatcherService
	retriever RetrieverService
	composer  ComposerService
	topK      int
}

func NewCombinedHandler(log *logger.Logger, ocr OCRService, matcher MatcherService, retriever RetrieverService, composer ComposerService, topK int) *CombinedHandler {
	return &CombinedHandler{
		log:       log.With("handler", "CombinedHandler"),
		ocr:       ocr,
		matcher:   matcher,
		retriever: retriever,
		composer:  composer,
		topK:      topK,
	}
}

// POST /recognize-and-answer
// multipart form: image=<photo>, question=<optional text>
//
// Recognition failures surface as HTTP errors. Answer failures after a
// successful recognition are reported inside the payload so the caller still
// gets the recognition result it paid for.
func (h *CombinedHandler) RecognizeAndAnswer(c *gin.Context) {
	question := strings.TrimSpace(c.PostForm("question"))
	ctx := c.Request.Context()

	rec, err := recognizeUpload(ctx, h.log, h.ocr, h.matcher, h.topK, c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}

	out := CombinedResponse{Recognition: *rec}

	switch {
	case question == "":
		// Recognition only.
	case rec.BestProductID == nil:
		out.Answer = &domain.AnswerResult{
			Answer:         answerNoRecognizedProduct,
			ContextSources: []string{},
		}
	default:
		out.Answer = h.answerFor(c, *rec.BestProductID, question)
	}

	response.RespondOK(c, out)
}

func (h *CombinedHandler) answerFor(c *gin.Context, productID, question string) *domain.AnswerResult {
	ctx := c.Request.Context()

	passages, err := h.retriever.Retrieve(ctx, productID, question)
	if err == nil {
		var result *domain.AnswerResult
		result, err = h.composer.Compose(ctx, question, passages, true)
		if err == nil {
			return result
		}
	}

	h.log.Error("Answer generation failed in combined request",
		"product_id", productID,
		"error", err,
	)
	// Only the curated message goes to the client, never the wrapped cause.
	msg := "answer generation unavailable"
	if ae := apierr.From(err); ae != nil {
		msg = ae.Message()
	}
	return &domain.AnswerResult{
		Answer:         "Failed to generate answer: " + msg,
		ContextSources: []string{},
	}
}
