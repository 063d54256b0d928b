package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"library-backend/internal/config"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/storage"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"

	bookHandler "library-backend/internal/domains/book/handler"
	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	loanHandler "library-backend/internal/domains/loan/handler"
	loanRepo "library-backend/internal/domains/loan/repository"
	loanService "library-backend/internal/domains/loan/service"
	ratingHandler "library-backend/internal/domains/rating/handler"
	ratingRepo "library-backend/internal/domains/rating/repository"
	ratingService "library-backend/internal/domains/rating/service"
	userHandler "library-backend/internal/domains/user/handler"
	userRepo "library-backend/internal/domains/user/repository"
	userService "library-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container holds the whole dependency graph. Everything in it is a
// singleton wired once at startup, in dependency order.
type Container struct {
	// Infrastructure, shared across domains
	Config         *config.Config
	DB             *database.PostgresDB
	Cache          cache.Cache
	JWTManager     *jwt.Manager
	Storage        *storage.MinIOStorage
	ImageProcessor *storage.ImageProcessor

	// Repositories
	UserRepo   userRepo.UserRepository
	BookRepo   bookRepo.BookRepository
	LoanRepo   loanRepo.LoanRepository
	RatingRepo ratingRepo.RatingRepository

	// Services
	UserService   userService.ServiceInterface
	BookService   bookService.ServiceInterface
	LoanService   loanService.ServiceInterface
	RatingService ratingService.ServiceInterface

	// HTTP handlers
	UserHandler   *userHandler.UserHandler
	BookHandler   *bookHandler.BookHandler
	LoanHandler   *loanHandler.LoanHandler
	RatingHandler *ratingHandler.RatingHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the dependency graph in order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("Initializing DI container...")

	c := &Container{}

	// Step 1: Configuration, depends on nothing
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("Config loaded (environment: %s)", cfg.App.Environment)

	// Step 2: Database
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("Database connected")

	// Step 3: Cache. Redis failure is non-critical, reads fall through
	// to Postgres.
	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("Redis connected")
		}
	}
	c.Cache = redisCache

	// Step 4: JWT manager
	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Step 5: Object storage for cover images. Also non-critical: the
	// API runs without covers when MinIO is down.
	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		log.Printf("MinIO connection failed (non-critical): %v", err)
	} else {
		c.Storage = minioStorage
		log.Println("MinIO connected")
	}
	c.ImageProcessor = storage.NewImageProcessor()

	// Step 6: Repositories, depend on infrastructure
	c.initRepositories()

	// Step 7: Services, depend on repositories and config
	c.initServices()

	// Step 8: Handlers, depend on services
	c.initHandlers()

	log.Println("DI container initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresUserRepository(pool)
	c.BookRepo = bookRepo.NewPostgresBookRepository(pool)
	c.LoanRepo = loanRepo.NewPostgresLoanRepository(pool)
	c.RatingRepo = ratingRepo.NewPostgresRatingRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(
		c.UserRepo,
		c.JWTManager,
		c.Config.Loan,
	)

	c.BookService = bookService.NewBookService(
		c.BookRepo,
		c.Cache,
		c.Storage,
		c.ImageProcessor,
	)

	c.LoanService = loanService.NewLoanService(
		c.LoanRepo,
		c.UserRepo, // Cross-domain: membership eligibility checks
		c.Config.Loan,
	)

	c.RatingService = ratingService.NewRatingService(
		c.RatingRepo,
		c.Cache,
	)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BookHandler = bookHandler.NewBookHandler(c.BookService)
	c.LoanHandler = loanHandler.NewLoanHandler(c.LoanService)
	c.RatingHandler = ratingHandler.NewRatingHandler(c.RatingService)
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases shared resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("Cleaning up container resources...")

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				log.Printf("Failed to close Redis: %v", err)
			} else {
				log.Println("Redis connections closed")
			}
		}
	}

	log.Println("Container cleanup completed")
}
