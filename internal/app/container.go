// Package app assembles the pipeline, gallery and HTTP surface from a Config.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"qrquicker/internal/adapter/repo"
	"qrquicker/internal/domain"
	"qrquicker/internal/gallery"
	"qrquicker/internal/http/handlers"
	"qrquicker/internal/http/httpapi"
	"qrquicker/internal/infra"
	"qrquicker/internal/notify"
	"qrquicker/internal/pipeline"
	"qrquicker/internal/qrcode"
	"qrquicker/internal/storage"
)

// Container holds every long-lived component of a running instance.
type Container struct {
	Config     *infra.Config
	Logger     zerolog.Logger
	Board      *notify.Board
	Texts      *notify.Catalog
	Gallery    *gallery.Store
	Renderer   *qrcode.Renderer
	Controller *pipeline.Controller
	Sweeper    *pipeline.Sweeper
	Scanner    *pipeline.Scanner

	pool *pgxpool.Pool
}

// New builds a container. The gallery catalog lives in Postgres when
// DATABASE_URL is set and in a JSON file under GALLERY_DIR otherwise.
func New(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Container, error) {
	temp, err := storage.NewFileStore(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("temp store: %w", err)
	}
	files, err := storage.NewFileStore(cfg.GalleryDir)
	if err != nil {
		return nil, fmt.Errorf("gallery store: %w", err)
	}

	c := &Container{Config: cfg, Logger: logger}

	var catalog domain.GalleryCatalog
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		pg := repo.NewGalleryRepository(infra.NewSQLRunner(pool, logger))
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("gallery schema: %w", err)
		}
		c.pool = pool
		catalog = pg
	} else {
		fc, err := gallery.NewFileCatalog(cfg.GalleryDir)
		if err != nil {
			return nil, fmt.Errorf("gallery catalog: %w", err)
		}
		logger.Warn().Str("path", fc.Path()).Msg("app: DATABASE_URL not set, gallery catalog is kept in a local file")
		catalog = fc
	}

	c.Board = notify.NewBoard(notify.WithLogger(logger))
	c.Board.Subscribe(notify.LogSubscriber(logger))
	c.Texts = notify.NewCatalog()
	c.Gallery = gallery.NewStore(files, catalog, cfg.GalleryBaseURL, logger)

	encoder := qrcode.NewEncoder()
	palette := cfg.Palette()
	c.Renderer = &qrcode.Renderer{Encoder: encoder, Palette: palette, Size: cfg.QRImageSize}

	gen := pipeline.NewGenerateStep(encoder, temp, c.Board, c.Texts, pipeline.GenerateConfig{
		Size:    cfg.QRImageSize,
		Palette: palette,
	}, logger)
	save := pipeline.NewSaveStep(temp, c.Gallery, c.Board, c.Texts, cfg.QRTitlePrefix, logger)
	c.Controller = pipeline.NewController(gen, save, c.Board, c.Texts, pipeline.Options{
		Workers:       cfg.PipelineWorkers,
		QueueSize:     cfg.PipelineQueueSize,
		DefaultLocale: cfg.DefaultLocale,
	}, logger)
	c.Sweeper = pipeline.NewSweeper(temp, cfg.TempRetention, cfg.TempSweepInterval, logger)
	c.Scanner = pipeline.NewScanner(qrcode.NewDecoder(), c.Board, c.Texts, cfg.DecodeMaxPixels, logger)

	return c, nil
}

// Handler returns the HTTP API backed by the container.
func (c *Container) Handler() http.Handler {
	app := &handlers.App{
		Config:   c.Config,
		Logger:   c.Logger,
		Creator:  c.Controller,
		Renderer: c.Renderer,
		Scanner:  c.Scanner,
		Board:    c.Board,
		Gallery:  c.Gallery,
	}
	return httpapi.NewRouter(app, c.Texts)
}

// Close stops the pipeline and releases the database pool.
func (c *Container) Close() {
	c.Controller.Stop()
	if c.pool != nil {
		c.pool.Close()
	}
}
