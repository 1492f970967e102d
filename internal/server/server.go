package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/config"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"
	"product-catalog/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// productCacheTTL bounds how long a cached product read can go stale.
const productCacheTTL = 5 * time.Minute

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

// NewServer wires repositories, cache, service, upload store and handlers
// into a configured HTTP server. The redis client may be nil to run without
// the product cache.
func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	// Initialize cache and service
	var productCache *cache.ProductCache
	if redisClient != nil {
		productCache = cache.NewProductCache(redisClient, productCacheTTL, logger)
	}
	catalog := service.NewCatalogService(productRepo, categoryRepo, productCache)

	// Initialize upload store
	uploads := upload.NewStore(cfg.Upload.Dir, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalog, uploads, logger)
	categoryHandler := transport.NewCategoryHandler(catalog, logger)

	// The same handler backs both versioned route sets, so the two API
	// surfaces cannot drift apart.
	productHandler.RegisterRoutes(router, "/api/products")
	productHandler.RegisterRoutes(router, "/api/v2/products")
	categoryHandler.RegisterRoutes(router, "/api/categories")

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
