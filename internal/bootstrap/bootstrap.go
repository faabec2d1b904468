package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/kelibin/secretaria/internal/app/controllers"
	appMigrations "github.com/kelibin/secretaria/internal/app/migrations"
	appRepos "github.com/kelibin/secretaria/internal/app/repositories"
	memoryRepos "github.com/kelibin/secretaria/internal/app/repositories/memory"
	mongoRepos "github.com/kelibin/secretaria/internal/app/repositories/mongo"
	postgresRepos "github.com/kelibin/secretaria/internal/app/repositories/postgres"
	appRoutes "github.com/kelibin/secretaria/internal/app/routes"
	appServices "github.com/kelibin/secretaria/internal/app/services"
	"github.com/kelibin/secretaria/internal/app/views"
	"github.com/kelibin/secretaria/internal/config"
	"github.com/kelibin/secretaria/internal/db"
	appMiddleware "github.com/kelibin/secretaria/internal/middleware"
	pkgAuth "github.com/kelibin/secretaria/internal/pkg/auth"
	"github.com/kelibin/secretaria/internal/pkg/logger"
	"github.com/kelibin/secretaria/internal/pkg/session"
	"github.com/kelibin/secretaria/internal/seed"
)

// Closer releases a backing connection
type Closer func()

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Sessions       *session.Manager
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: logger.ParseFormat(cfg.Logging.Format),
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects the configured driver and returns its repositories
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, Closer, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")

	switch cfg.Database.Driver {
	case config.DriverMemory:
		lgr.Warn().Msg("Using the in-memory store; data is lost on restart")
		return memoryRepos.NewRepositories(memoryRepos.Open()), func() {}, nil

	case config.DriverPostgres:
		database, err := db.NewPostgresDB(cfg)
		if err != nil {
			return nil, nil, err
		}

		var migrations fs.FS = appMigrations.Embedded()
		if dir := cfg.Database.Postgres.MigrationsDir; dir != "" {
			migrations = os.DirFS(dir)
		}
		lgr.Info().Msg("Running database migrations...")
		if err := appMigrations.NewMigrator(database).Migrate(ctx, migrations); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
		return postgresRepos.NewRepositories(database.Pool), database.Close, nil

	case config.DriverMongo:
		database, err := db.NewMongoDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := mongoRepos.EnsureIndexes(ctx, database.Database); err != nil {
			database.Close()
			return nil, nil, err
		}
		return mongoRepos.NewRepositories(database.Database), database.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// SetupSessionStore creates the configured session store
func SetupSessionStore(cfg *config.Config, lgr zerolog.Logger) (session.Store, Closer, error) {
	switch cfg.Session.Driver {
	case config.DriverRedis:
		client, err := db.NewRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := client.Close(); err != nil {
				lgr.Error().Err(err).Msg("Failed to close Redis client")
			}
		}
		return session.NewRedisStore(client, cfg.Session.Redis.Prefix), closer, nil
	case config.DriverMemory:
		return session.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session driver %q", cfg.Session.Driver)
	}
}

// BuildDependencies initializes services, the session manager and controllers.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, store session.Store, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Repos: repos, Logger: lgr}

	deps.Services = appServices.New(repos, pkgAuth.NewBcryptHasher(pkgAuth.DefaultBcryptCost), lgr)

	tokens := pkgAuth.NewTokenService(pkgAuth.TokenConfig{
		SecretKey:   cfg.Session.Secret,
		Expiration:  cfg.SessionMaxAge(),
		TokenIssuer: cfg.Session.Issuer,
	})
	deps.Sessions = session.NewManager(store, tokens, session.Options{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.SessionMaxAge(),
		Secure:     cfg.Session.Secure,
	}, logger.Component("session"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Sessions, deps.Services.Accounts, logger.Component("auth"))

	pages := appControllers.NewPages(deps.Sessions, logger.Component("pages"))
	deps.Controllers = appRoutes.Controllers{
		Students:    appControllers.NewStudentController(deps.Services.Students, deps.Services.Enrollments, pages, logger.Component("students")),
		Enrollments: appControllers.NewEnrollmentController(deps.Services.Enrollments, pages),
		Auth:        appControllers.NewAuthController(deps.Services.Accounts, deps.Sessions, pages, logger.Component("auth")),
		Accounts:    appControllers.NewAccountController(deps.Services.Accounts, pages, logger.Component("accounts")),
	}

	return deps
}

// SeedDefaultData creates the configured bootstrap account
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	return seed.CreateDefaultAccount(ctx, cfg, deps.Services.Accounts, deps.Logger)
}

// SetupRouter configures the Gin engine with middleware, views and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.Recovery(lgr),
	)

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/public", http.FS(views.Public()))

	router.Use(
		deps.Sessions.Middleware(),
		deps.AuthMiddleware.CurrentAccount(),
	)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}
