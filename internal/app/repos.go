package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/productintel-backend/internal/data/repos"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
)

type Repos struct {
	Product      repos.ProductRepo
	ProductChunk repos.ProductChunkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product:      repos.NewProductRepo(db, log),
		ProductChunk: repos.NewProductChunkRepo(db, log),
	}
}
