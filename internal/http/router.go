package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/productintel-backend/internal/http/handlers"
	httpMW "github.com/yungbote/productintel-backend/internal/http/middleware"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler    *httpH.HealthHandler
	RecognizeHandler *httpH.RecognizeHandler
	AnswerHandler    *httpH.AnswerHandler
	CombinedHandler  *httpH.CombinedHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Recognition
	if cfg.RecognizeHandler != nil {
		r.POST("/recognize", cfg.RecognizeHandler.Recognize)
	}

	// Product Q&A
	if cfg.AnswerHandler != nil {
		r.POST("/products/:id/answer", cfg.AnswerHandler.Answer)
	}

	// Combined recognition + Q&A
	if cfg.CombinedHandler != nil {
		r.POST("/recognize-and-answer", cfg.CombinedHandler.RecognizeAndAnswer)
	}

	return r
}
