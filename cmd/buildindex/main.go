package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yungbote/productintel-backend/internal/app"
	"github.com/yungbote/productintel-backend/internal/catalog"
	"github.com/yungbote/productintel-backend/internal/chunkindex"
	"github.com/yungbote/productintel-backend/internal/data/db"
	"github.com/yungbote/productintel-backend/internal/data/repos"
	"github.com/yungbote/productintel-backend/internal/domain"
	"github.com/yungbote/productintel-backend/internal/platform/logger"
	"github.com/yungbote/productintel-backend/internal/platform/openai"
)

// buildindex ingests the product catalog and per-product documentation into
// sqlite: catalog rows verbatim, documentation as embedded chunks. The server
// loads both read-only at startup, so this runs before first boot and after
// any catalog or documentation change.
func main() {
	_ = godotenv.Load()

	var catalogPath, docsDir string
	flag.StringVar(&catalogPath, "catalog", "data/catalog.csv", "Path to the product catalog CSV")
	flag.StringVar(&docsDir, "docs", "data/docs", "Directory of <product_id>.txt documentation files")
	flag.Parse()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, catalogPath, docsDir); err != nil {
		log.Error("Index build failed", "error", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger, catalogPath, docsDir string) error {
	ctx := context.Background()

	cfg, err := app.LoadConfig(log)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	products, err := readCatalogCSV(catalogPath)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	cat, err := catalog.New(products)
	if err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	log.Info("Catalog loaded", "path", catalogPath, "products", cat.Len())

	chunks, err := chunkDocuments(log, cat, docsDir, cfg.ChunkPolicy)
	if err != nil {
		return err
	}
	log.Info("Documents chunked", "chunks", len(chunks))

	oa, err := openai.NewClient(log)
	if err != nil {
		return fmt.Errorf("init openai client: %w", err)
	}
	if !oa.Configured() {
		return fmt.Errorf("OPENAI_API_KEY is required to embed documentation")
	}
	if err := chunkindex.EmbedChunks(ctx, oa, chunks, 64, 4); err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	log.Info("Chunks embedded", "model", oa.EmbedModel())

	sqlite, err := db.NewSQLiteService(log)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	if err := sqlite.AutoMigrateAll(); err != nil {
		return fmt.Errorf("sqlite automigrate: %w", err)
	}
	theDB := sqlite.DB()

	productRepo := repos.NewProductRepo(theDB, log)
	chunkRepo := repos.NewProductChunkRepo(theDB, log)

	// One transaction so a half-built index never replaces a working one.
	err = theDB.Transaction(func(tx *gorm.DB) error {
		if err := chunkRepo.DeleteAll(ctx, tx); err != nil {
			return fmt.Errorf("clear chunks: %w", err)
		}
		if err := productRepo.DeleteAll(ctx, tx); err != nil {
			return fmt.Errorf("clear products: %w", err)
		}
		if _, err := productRepo.Create(ctx, tx, toProductPtrs(products)); err != nil {
			return fmt.Errorf("write products: %w", err)
		}
		if _, err := chunkRepo.Create(ctx, tx, toChunkPtrs(chunks)); err != nil {
			return fmt.Errorf("write chunks: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("Index build complete", "products", len(products), "chunks", len(chunks))
	return nil
}

// readCatalogCSV parses rows of
// product_id,title,brand,model,category,aliases where aliases is a
// pipe-separated list. The first row is a header.
func readCatalogCSV(path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || strings.TrimSpace(header[0]) != "product_id" {
		return nil, fmt.Errorf("unexpected header %v, want product_id,title,brand,model,category,aliases", header)
	}

	var products []domain.Product
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		p := domain.Product{
			ProductID: strings.TrimSpace(row[0]),
			Title:     strings.TrimSpace(row[1]),
			Brand:     strings.TrimSpace(row[2]),
			Model:     strings.TrimSpace(row[3]),
			Category:  strings.TrimSpace(row[4]),
		}
		if aliases := splitAliases(row[5]); len(aliases) > 0 {
			raw, err := json.Marshal(aliases)
			if err != nil {
				return nil, err
			}
			p.Aliases = raw
		}
		products = append(products, p)
	}
	return products, nil
}

func splitAliases(field string) []string {
	var out []string
	for _, a := range strings.Split(field, "|") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func chunkDocuments(log *logger.Logger, cat *catalog.Catalog, docsDir string, policy chunkindex.ChunkPolicy) ([]domain.ProductChunk, error) {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".txt")
		if !cat.Has(id) {
			return nil, fmt.Errorf("doc %s has no catalog row", e.Name())
		}
	}

	var chunks []domain.ProductChunk
	for _, p := range cat.Products() {
		source := p.ProductID + ".txt"
		raw, err := os.ReadFile(filepath.Join(docsDir, source))
		if os.IsNotExist(err) {
			log.Warn("No documentation file for product", "product_id", p.ProductID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read doc for %s: %w", p.ProductID, err)
		}
		docChunks, err := chunkindex.SplitDocument(p.ProductID, source, string(raw), policy)
		if err != nil {
			return nil, fmt.Errorf("chunk doc for %s: %w", p.ProductID, err)
		}
		chunks = append(chunks, docChunks...)
	}
	return chunks, nil
}

func toProductPtrs(products []domain.Product) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for i := range products {
		out = append(out, &products[i])
	}
	return out
}

func toChunkPtrs(chunks []domain.ProductChunk) []*domain.ProductChunk {
	out := make([]*domain.ProductChunk, 0, len(chunks))
	for i := range chunks {
		out = append(out, &chunks[i])
	}
	return out
}
