package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/kyiku/mall-event-back/internal/campaign"
	"github.com/kyiku/mall-event-back/internal/collage"
	appconfig "github.com/kyiku/mall-event-back/internal/config"
	"github.com/kyiku/mall-event-back/internal/dedup"
	"github.com/kyiku/mall-event-back/internal/greeting"
	"github.com/kyiku/mall-event-back/internal/handler"
	"github.com/kyiku/mall-event-back/internal/hub"
	"github.com/kyiku/mall-event-back/internal/layout"
	"github.com/kyiku/mall-event-back/internal/logging"
	"github.com/kyiku/mall-event-back/internal/middleware"
	"github.com/kyiku/mall-event-back/internal/response"
	"github.com/kyiku/mall-event-back/internal/storage"
	"github.com/kyiku/mall-event-back/internal/websocket"
)

// awsCallTimeout bounds each S3 and Bedrock call made through the adapters.
const awsCallTimeout = 30 * time.Second

// S3Adapter adapts AWS S3 client to our interface
type S3Adapter struct {
	client *s3.Client
	bucket string
}

func (a *S3Adapter) GetObject(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsCallTimeout)
	defer cancel()

	output, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()
	return io.ReadAll(output.Body)
}

func (a *S3Adapter) PutObject(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), awsCallTimeout)
	defer cancel()

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: stringPtr("image/png"),
	})
	return err
}

// ListObjects pages through every key under prefix.
func (a *S3Adapter) ListObjects(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awsCallTimeout)
	defer cancel()

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: &a.bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}

// BedrockAdapter adapts AWS Bedrock client to our interface
type BedrockAdapter struct {
	client *bedrockruntime.Client
}

// BedrockRequest represents the request body for Claude via Bedrock
type BedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	Messages         []BedrockMessage `json:"messages"`
}

// BedrockMessage represents a message in the Bedrock request
type BedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (a *BedrockAdapter) InvokeModel(modelID string, prompt string) (string, error) {
	req := BedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        200,
		Messages: []BedrockMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), awsCallTimeout)
	defer cancel()

	output, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &modelID,
		Body:        body,
		ContentType: stringPtr("application/json"),
	})
	if err != nil {
		return "", err
	}

	return string(output.Body), nil
}

func stringPtr(s string) *string {
	return &s
}

func main() {
	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	ctx := logging.WithLogger(context.Background(), logger)

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *appconfig.Config) error {
	logger := logging.FromContext(ctx)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(logging.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(middleware.CORSWithSkipper(isRelayRoute, cfg.AllowedOrigin))

	// Layout engine
	layoutCfg := layout.DefaultConfig()
	if cfg.LayoutConfigPath != "" {
		loaded, err := layout.LoadConfig(cfg.LayoutConfigPath)
		if err != nil {
			return err
		}
		layoutCfg = loaded
		logger.Info("loaded layout config", "path", cfg.LayoutConfigPath, "padding", layoutCfg.Padding)
	}
	engine := layout.NewEngine(layoutCfg, nil)

	// Campaign API
	campaignClient := campaign.NewClient(cfg.CampaignAPIURL, cfg.CampaignAPIToken, campaign.WithTimeout(cfg.HTTPTimeout))

	health := handler.NewHealthHandler()

	// Dedup store
	var store dedup.Store
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		redisStore := dedup.NewRedisStore(rdb, cfg.DedupTTL)
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis not reachable at startup", "addr", cfg.RedisAddr, "err", err)
		}
		health.AddCheck("redis", redisStore.Ping)
		store = redisStore
		logger.Info("dedup store", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		store = dedup.NewMemoryStoreWithExpiry(cfg.DedupTTL)
		logger.Info("dedup store", "backend", "memory")
	}

	// Gallery hub
	galleryHub := hub.NewHub()
	upgrader := websocket.NewUpgrader(cfg.AllowedOrigin)

	// AWS
	var s3Adapter *S3Adapter
	var bedrockAdapter *BedrockAdapter
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Warn("failed to load AWS config (collage and greeting disabled)", "err", err)
	} else {
		if cfg.S3Enabled() {
			s3Adapter = &S3Adapter{
				client: s3.NewFromConfig(awsCfg),
				bucket: cfg.S3Bucket,
			}
		}
		bedrockAdapter = &BedrockAdapter{
			client: bedrockruntime.NewFromConfig(awsCfg),
		}
	}

	// Initialize handlers
	campaignHandler := handler.NewCampaignHandler(campaignClient, engine)
	layoutHandler := handler.NewLayoutHandler(engine)
	actionHandler := handler.NewActionHandler(campaignClient, store)
	actionHandler.SetBroadcaster(galleryHub)
	userHandler := handler.NewUserHandler(store)
	galleryHandler := handler.NewGalleryHandler(upgrader, galleryHub, campaignClient, engine)

	downloadHandler := handler.NewDownloadHandler(cfg.FileAPIBaseURL, cfg.FileAPIToken, cfg.HTTPTimeout)

	// Handlers that require S3
	var collageHandler *handler.CollageHandler
	if s3Adapter != nil {
		imageStore := storage.NewS3Client(s3Adapter, cfg.S3Bucket, cfg.CloudfrontURL)
		collageHandler = handler.NewCollageHandler(collage.NewCompositor(imageStore, engine, campaignClient))
	}

	// Handlers that require Bedrock
	var greetingHandler *handler.GreetingHandler
	if bedrockAdapter != nil {
		suggester := greeting.NewSuggester(bedrockAdapter, cfg.AWSRegion)
		suggester.EnableFallback(true) // Use fallback if Bedrock fails
		greetingHandler = handler.NewGreetingHandler(suggester)
	}

	// Health check (root level for ALB)
	e.GET("/health", health.Check)

	// WebSocket endpoint
	e.GET("/ws/gallery", galleryHandler.Connect)

	// API routes
	api := e.Group("/api")
	api.GET("/health", health.Check)

	api.GET("/campaigns/:id", campaignHandler.Get)
	api.GET("/campaigns/:id/layout", campaignHandler.Layout)
	api.POST("/layout", layoutHandler.Compute)

	// Action endpoints
	limit := middleware.RateLimitMiddleware(cfg.ActionRateLimit, cfg.ActionRateWindow)
	api.POST("/submissions/:id/vote", actionHandler.Vote, limit)
	api.POST("/submissions/:id/like", actionHandler.Like, limit)
	api.POST("/submissions/:id/share", actionHandler.Share, limit)

	api.GET("/users/:userId/actions", userHandler.Actions)
	api.POST("/users/pseudo", userHandler.IssuePseudoID)

	// File relay (any origin)
	relay := e.Group("/api", middleware.PermissiveCORS())
	relay.GET("/download", downloadHandler.Download)
	relay.OPTIONS("/download", downloadHandler.Download)
	relay.GET("/files/:fileId/download", downloadHandler.DownloadByID)
	relay.OPTIONS("/files/:fileId/download", downloadHandler.DownloadByID)

	// Collage endpoint
	if collageHandler != nil {
		api.POST("/campaigns/:id/collage", collageHandler.Create)
	} else {
		api.POST("/campaigns/:id/collage", unavailableHandler("S3"))
	}

	// Greeting endpoint
	if greetingHandler != nil {
		api.POST("/cards/greeting", greetingHandler.Suggest)
	} else {
		api.POST("/cards/greeting", unavailableHandler("Bedrock"))
	}

	for _, r := range e.Routes() {
		logger.Debug("route", "method", r.Method, "path", r.Path)
	}

	logger.Info("starting server", "port", cfg.Port)
	return e.Start(":" + cfg.Port)
}

// isRelayRoute matches the file relay routes, which set their own CORS headers.
func isRelayRoute(c echo.Context) bool {
	switch c.Path() {
	case "/api/download", "/api/files/:fileId/download":
		return true
	}
	return false
}

// unavailableHandler returns a handler that responds with service unavailable
func unavailableHandler(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return response.ErrorWithCode(c, http.StatusServiceUnavailable, response.CodeUnavailable, service+" is not configured")
	}
}
