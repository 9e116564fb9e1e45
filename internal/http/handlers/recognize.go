package handlers

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/http/response"
	"github.com/yungbote/productintel-backend/internal/imagex"
	"github.com/yungbote/productintel-backend/internal/platform/apierr"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type RecognizeHandler struct {
	log     *logger.Logger
	ocr     OCRService
	matcher MatcherService
	topK    int
}

func NewRecognizeHandler(log *logger.Logger, ocr OCRService, matcher MatcherService, topK int) *RecognizeHandler {
	return &RecognizeHandler{
		log:     log.With("handler", "RecognizeHandler"),
		ocr:     ocr,
		matcher: matcher,
		topK:    topK,
	}
}

// POST /recognize
// multipart form: image=<photo>
func (h *RecognizeHandler) Recognize(c *gin.Context) {
	rec, err := recognizeUpload(c.Request.Context(), h.log, h.ocr, h.matcher, h.topK, c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, rec)
}

// recognizeUpload runs the shared upload -> OCR -> match pipeline. A photo
// with no readable text yields an empty candidate list, not an error.
func recognizeUpload(ctx context.Context, log *logger.Logger, ocr OCRService, matcher MatcherService, topK int, c *gin.Context) (*RecognitionResponse, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, apierr.InvalidInput("image file is required", err)
	}

	data, err := readUpload(fh)
	if err != nil {
		return nil, err
	}

	info, err := imagex.Validate(data)
	if err != nil {
		return nil, err
	}
	log.Info("Processing image",
		"filename", fh.Filename,
		"format", info.Format,
		"size_bytes", len(data),
	)

	ocrText, err := ocr.ExtractText(ctx, data, info.MIMEType)
	if err != nil {
		return nil, apierr.UpstreamUnavailable("text extraction unavailable", err)
	}
	if ocrText == "" {
		log.Warn("No text extracted from image", "filename", fh.Filename)
		return &RecognitionResponse{Candidates: []domain.MatchCandidate{}}, nil
	}

	candidates := matcher.Match(ocrText, topK)
	if candidates == nil {
		candidates = []domain.MatchCandidate{}
	}

	rec := &RecognitionResponse{Candidates: candidates}
	if len(candidates) > 0 {
		rec.BestProductID = &candidates[0].ProductID
	}
	return rec, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > imagex.MaxUploadBytes {
		return nil, apierr.InvalidInput("image file too large", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apierr.InvalidInput("could not read image file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imagex.MaxUploadBytes+1))
	if err != nil {
		return nil, apierr.InvalidInput("could not read image file", err)
	}
	if len(data) > imagex.MaxUploadBytes {
		return nil, apierr.InvalidInput("image file too large", nil)
	}
	return data, nil
}
