package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"cuefm/cache"
	"cuefm/config"
	"cuefm/core/auth"
	"cuefm/core/live"
	"cuefm/logger"
	"cuefm/repository"
	"cuefm/storage"
	"cuefm/store"
)

// documentFiles are the logical documents the watcher reports on.
var documentFiles = []string{"manifest.json", "timeline.json", "presets.json", "remote.json"}

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     30,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ensureDirExists(cfg.DataDir)
	ensureDirExists(cfg.UploadDir)

	// Redis is optional; without it the mapping cache is a no-op.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("[Server] Redis unavailable, mapping cache disabled", logger.ErrorField(err))
	} else if cache.RedisClient != nil {
		logger.Info("[Server] Connected to Redis")
	}
	defer cache.CloseRedis()

	// Blob storage: MinIO when configured, local disk otherwise.
	var blobs storage.Provider
	var minioBlobs *storage.MinioProvider
	localBlobs, err := storage.NewLocalProvider(cfg.UploadDir)
	if err != nil {
		logger.Fatal("[Server] Failed to initialize upload storage", logger.ErrorField(err))
	}
	blobs = localBlobs
	if cfg.MinioEndpoint != "" {
		minioBlobs, err = storage.NewMinioProvider(cfg)
		if err != nil {
			logger.Fatal("[Server] Failed to initialize MinIO", logger.ErrorField(err))
		}
		blobs = minioBlobs
		logger.Info("[Server] Using MinIO upload storage", logger.String("bucket", cfg.MinioBucket))
	}

	if cfg.AdminPasswordHash == "" {
		logger.Warn("[Server] ADMIN_PASSWORD_HASH is not set; all logins will be rejected")
	}
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Warn("[Server] JWT_SECRET is not set; sessions will not survive a restart")
		jwtSecret = randomSecret()
	}
	issuer := auth.NewTokenIssuer(jwtSecret, cfg.TokenTTL)

	manifests := repository.NewManifestRepository(cfg.DataDir)
	presets := repository.NewPresetRepository(cfg.DataDir)
	timelines := repository.NewTimelineRepository(cfg.DataDir)
	remote := repository.NewCommandChannel(cfg.DataDir)

	hub := live.NewHub()

	// Surface on-disk document changes (ours and other processes') to
	// connected consoles.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	watcher, err := store.NewWatcher(cfg.DataDir, documentFiles)
	if err != nil {
		logger.Warn("[Server] Document watcher unavailable", logger.ErrorField(err))
	} else {
		defer watcher.Close()
		go watcher.WatchInto(watchCtx, func(ev store.ChangeEvent) {
			hub.Broadcast(live.Event{Type: live.EventDocumentChanged, Document: ev.Document})
		})
	}

	apiHandler := NewAPIHandler(manifests, presets, timelines, remote, issuer, blobs, hub, cache.NewMappingCache(), cfg)

	server.Handler = newRouter(apiHandler, minioBlobs, cfg)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("[Server] Listening", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Server] Failed to start", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("[Server] Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("[Server] Forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("[Server] Stopped")
}

// newRouter wires the full route table. minioBlobs may be nil, in which
// case only local uploads are served.
func newRouter(apiHandler *APIHandler, minioBlobs *storage.MinioProvider, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
	})

	// Auth
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", apiHandler.MeHandler).Methods(http.MethodGet)

	// Sound catalog (manifest document)
	router.HandleFunc("/api/manifest", apiHandler.AuthMiddleware(apiHandler.GetManifestHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/upload", apiHandler.AdminMiddleware(apiHandler.UploadSoundHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sounds", apiHandler.AdminMiddleware(apiHandler.InsertSoundHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sounds/reorder", apiHandler.AdminMiddleware(apiHandler.ReorderSoundsHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/sounds/{id}", apiHandler.AdminMiddleware(apiHandler.UpdateSoundHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/sounds/{id}", apiHandler.AdminMiddleware(apiHandler.DeleteSoundHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/schedules", apiHandler.AdminMiddleware(apiHandler.InsertScheduleHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/schedules/{id}", apiHandler.AdminMiddleware(apiHandler.UpdateScheduleHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/schedules/{id}", apiHandler.AdminMiddleware(apiHandler.DeleteScheduleHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/categories", apiHandler.AdminMiddleware(apiHandler.InsertCategoryHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/categories/{id}", apiHandler.AdminMiddleware(apiHandler.RenameCategoryHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/categories/{id}", apiHandler.AdminMiddleware(apiHandler.DeleteCategoryHandler)).Methods(http.MethodDelete)

	// Presets
	router.HandleFunc("/api/presets", apiHandler.AuthMiddleware(apiHandler.ListPresetsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/presets", apiHandler.AdminMiddleware(apiHandler.UpsertPresetHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/presets/{id}", apiHandler.AdminMiddleware(apiHandler.DeletePresetHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/presets/{id}/apply", apiHandler.AdminMiddleware(apiHandler.ApplyPresetHandler)).Methods(http.MethodPost)

	// Timeline state, mapping and scope
	router.HandleFunc("/api/timeline", apiHandler.AuthMiddleware(apiHandler.GetTimelineHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/timeline", apiHandler.AdminMiddleware(apiHandler.SaveTimelineHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/mapping", apiHandler.AuthMiddleware(apiHandler.MappingHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/scope", apiHandler.AuthMiddleware(apiHandler.ScopeHandler)).Methods(http.MethodGet)

	// Remote command relay
	router.HandleFunc("/api/remote", apiHandler.AuthMiddleware(apiHandler.GetRemoteHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/remote", apiHandler.AuthMiddleware(apiHandler.SendRemoteHandler)).Methods(http.MethodPost)

	// Live push
	router.HandleFunc("/api/live", apiHandler.LiveHandler).Methods(http.MethodGet)

	// Uploaded audio from MinIO, when configured
	if minioBlobs != nil {
		router.PathPrefix("/media/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			objectPath := strings.TrimPrefix(r.URL.Path, "/media/")

			ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
			defer cancel()

			object, err := minioBlobs.Object(ctx, objectPath)
			if err != nil {
				writeError(w, http.StatusNotFound, "file not found", "")
				return
			}
			defer object.Close()

			w.Header().Set("Content-Type", contentTypeFor(objectPath))
			w.Header().Set("Cache-Control", "public, max-age=31536000")

			if _, err := io.Copy(w, object); err != nil {
				logger.Warn("[Server] Media serve interrupted", logger.ErrorField(err))
			}
		})
	}

	// Uploaded audio from local disk
	uploadsFileServer := http.FileServer(http.Dir(cfg.UploadDir))
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", uploadsFileServer))

	// Web console UI
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	return router
}

// randomSecret generates an ephemeral signing secret for setups that never
// configured one.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logger.Fatal("[Server] Failed to generate session secret", logger.ErrorField(err))
	}
	return hex.EncodeToString(buf)
}

func contentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(path, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(path, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(path, ".m4a"):
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			logger.Fatal("[Server] Failed to create directory", logger.String("path", path), logger.ErrorField(err))
		}
	} else if err != nil {
		logger.Fatal("[Server] Failed to check directory", logger.String("path", path), logger.ErrorField(err))
	}
}
