package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/productintel-backend/internal/clients/gcp"
	"github.com/yungbote/productintel-backend/internal/clients/redis"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
	"github.com/yungbote/productintel-backend/internal/platform/openai"
)

type Clients struct {
	GcpVision   gcp.Vision
	Openai      openai.Client
	AnswerCache redis.AnswerCache
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Gcp
	vision, err := gcp.NewVision(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init vision client: %w", err)
	}

	// Openai
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		_ = vision.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Redis
	var cache redis.AnswerCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := redis.NewAnswerCache(log)
		if err != nil {
			_ = vision.Close()
			return Clients{}, fmt.Errorf("init answer cache: %w", err)
		}
		cache = c
	}

	return Clients{
		GcpVision:   vision,
		Openai:      openaiClient,
		AnswerCache: cache,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.GcpVision != nil {
		_ = c.GcpVision.Close()
	}
}
