package app

import (
	"github.com/yungbote/productintel-backend/internal/http"
	httpH "github.com/yungbote/productintel-backend/internal/http/handlers"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Recognize *httpH.RecognizeHandler
	Answer    *httpH.AnswerHandler
	Combined  *httpH.CombinedHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Recognize: httpH.NewRecognizeHandler(log, clients.GcpVision, services.Matcher, cfg.TopKMatches),
		Answer:    httpH.NewAnswerHandler(log, services.Retriever, services.Composer, clients.AnswerCache),
		Combined:  httpH.NewCombinedHandler(log, clients.GcpVision, services.Matcher, services.Retriever, services.Composer, cfg.TopKMatches),
	}
}

func wireServer(log *logger.Logger, handlers Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:              log,
		HealthHandler:    handlers.Health,
		RecognizeHandler: handlers.Recognize,
		AnswerHandler:    handlers.Answer,
		CombinedHandler:  handlers.Combined,
	})
}
