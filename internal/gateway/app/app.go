// Package app wires the gateway together: configuration, the project
// store, the preview supervisor, media generation, handlers and the
// HTTP server.
package app

import (
	"context"
	"fmt"
	"log"

	"framewright/internal/gateway/config"
	"framewright/internal/gateway/handler"
	"framewright/internal/gateway/repository/projectstore"
	"framewright/internal/gateway/server"
	gatewayproject "framewright/internal/gateway/service/project"
	"framewright/internal/media"
	"framewright/internal/preview"
	"framewright/internal/scaffold"
)

type App struct {
	server *server.Server
	svc    *gatewayproject.Service
	store  *projectstore.Store
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Dependencies
	store := projectstore.Open(cfg.Store.DSN, cfg.Store.FilePath)

	defaults, err := scaffold.LoadConfig(cfg.StudioConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load studio config: %w", err)
	}

	sup := preview.New(preview.Config{
		PortMin: cfg.Preview.PortMin,
		PortMax: cfg.Preview.PortMax,
	})

	projectSvc, err := gatewayproject.New(store, sup, cfg.Preview.ProjectsRoot, defaults)
	if err != nil {
		return nil, err
	}

	gen, err := buildGenerator(ctx, cfg.Media)
	if err != nil {
		return nil, err
	}

	convertHandler := handler.NewConvertHandler()
	keyframesHandler := handler.NewKeyframesHandler()
	projectsHandler := handler.NewProjectsHandler(projectSvc, gen)

	// Routing & Server
	mux := server.NewMux(convertHandler, keyframesHandler, projectsHandler)
	srv := server.New(cfg.Port, mux)

	return &App{
		server: srv,
		svc:    projectSvc,
		store:  store,
	}, nil
}

// buildGenerator assembles the media pipeline from whatever is
// configured. Missing credentials disable the matching client rather
// than failing startup; the handlers report those as unconfigured.
func buildGenerator(ctx context.Context, cfg config.MediaConfig) (*media.Generator, error) {
	var assets media.Store
	var err error
	if cfg.Asset.Enabled {
		assets, err = media.NewS3Store(media.S3Config{
			Endpoint:  cfg.Asset.Endpoint,
			Region:    cfg.Asset.Region,
			AccessKey: cfg.Asset.AccessKey,
			SecretKey: cfg.Asset.SecretKey,
			Bucket:    cfg.Asset.Bucket,
			UseSSL:    cfg.Asset.UseSSL,
		})
	} else {
		assets, err = media.NewDiskStore(cfg.Asset.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open asset store: %w", err)
	}

	var speech *media.SpeechClient
	var image *media.ImageClient
	if cfg.GeminiAPIKey != "" {
		speech, err = media.NewSpeechClient(ctx, media.SpeechConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.SpeechModel,
			Voice:  cfg.SpeechVoice,
		})
		if err != nil {
			return nil, err
		}
		image, err = media.NewImageClient(ctx, media.ImageConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.ImageModel,
		})
		if err != nil {
			return nil, err
		}
	} else {
		log.Println("GEMINI_API_KEY not set; speech and imagery generation disabled")
	}

	var sound *media.SoundClient
	if cfg.SoundToken != "" {
		sound, err = media.NewSoundClient(media.SoundConfig{
			BaseURL: cfg.SoundBaseURL,
			Token:   cfg.SoundToken,
		})
		if err != nil {
			return nil, err
		}
	}

	return media.NewGenerator(speech, image, sound, assets)
}

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops preview processes, flushes the project store and then
// drains the HTTP server.
func (a *App) Shutdown(ctx context.Context) error {
	a.svc.StopAll()
	a.store.Save()
	if err := a.store.Close(); err != nil {
		log.Printf("projectstore: close: %v", err)
	}
	return a.server.Shutdown(ctx)
}
