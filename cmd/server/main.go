package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avelkov/skipstream/internal/api"
	"github.com/avelkov/skipstream/internal/classifier"
	"github.com/avelkov/skipstream/internal/database"
	"github.com/avelkov/skipstream/internal/storage"
)

func main() {
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	maxUploadSize := os.Getenv("MAX_UPLOAD_SIZE")
	if maxUploadSize == "" {
		maxUploadSize = "104857600"
	}
	maxSize, err := strconv.ParseInt(maxUploadSize, 10, 64)
	if err != nil {
		logger.Fatal("invalid MAX_UPLOAD_SIZE", zap.Error(err))
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./skipstream.db"
	}

	pingInterval := 30 * time.Second
	if v := os.Getenv("PING_INTERVAL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			pingInterval = time.Duration(secs) * time.Second
		}
	}

	localStorage, err := storage.NewLocalStorage(uploadDir)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	db, err := database.NewDB(database.Config{Path: dbPath})
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	prober, err := classifier.NewProber()
	if err != nil {
		logger.Warn("ffprobe unavailable, uploads get default metadata", zap.Error(err))
		prober = nil
	}

	app := &api.App{
		Storage:       localStorage,
		DB:            db,
		VideoRepo:     database.NewVideoRepository(db),
		SessionRepo:   database.NewSessionRepository(db),
		Classifier:    classifier.NewStubClassifier(),
		Prober:        prober,
		MaxUploadSize: maxSize,
		PingInterval:  pingInterval,
		Logger:        logger,
	}

	router := api.NewRouter(app)

	logger.Info("server starting",
		zap.String("port", port),
		zap.String("upload_dir", uploadDir),
		zap.String("db_path", dbPath),
		zap.Int64("max_upload_size", maxSize),
	)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
