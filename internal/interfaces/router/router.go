package router

import (
	"net/http"

	authsvc "estate-backend/internal/application/auth"
	imgsvc "estate-backend/internal/application/images"
	leadsvc "estate-backend/internal/application/leads"
	likesvc "estate-backend/internal/application/likes"
	listsvc "estate-backend/internal/application/listings"
	locsvc "estate-backend/internal/application/locations"
	msgsvc "estate-backend/internal/application/messages"
	statsvc "estate-backend/internal/application/stats"
	usersvc "estate-backend/internal/application/users"
	"estate-backend/internal/config"
	"estate-backend/internal/infrastructure/database"
	authhandler "estate-backend/internal/interfaces/handlers/auth"
	healthhandler "estate-backend/internal/interfaces/handlers/health"
	leadhandler "estate-backend/internal/interfaces/handlers/leads"
	likehandler "estate-backend/internal/interfaces/handlers/likes"
	listhandler "estate-backend/internal/interfaces/handlers/listings"
	lochandler "estate-backend/internal/interfaces/handlers/locations"
	msghandler "estate-backend/internal/interfaces/handlers/messages"
	stathandler "estate-backend/internal/interfaces/handlers/stats"
	userhandler "estate-backend/internal/interfaces/handlers/users"
	"estate-backend/internal/middleware"
	"estate-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               32 * 1024 * 1024,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb}
	app.Get("/health", hh.Check)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		hh.DB = &gormDBPinger{db: db}
	}

	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db != nil && rdb != nil {
		RegisterRoutes(app, db, rdb, cfg)
	}

	return app, db, rdb, nil
}

// RegisterRoutes wires every service-backed route. Split out so tests can
// assemble an app around an in-memory database.
func RegisterRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	images := &imgsvc.Service{DB: db, MediaDir: cfg.MediaDir}

	// Users
	us := &usersvc.Service{DB: db, Rdb: rdb}
	uh := &userhandler.Handlers{Service: us}
	app.Post("/api/v1/users/register", uh.Register)
	app.Post("/api/v1/users/create-realtor",
		middleware.RequireAuth(), middleware.AuthorizePermission(constants.CreateRealtor), uh.CreateRealtor)
	app.Patch("/api/v1/users/:id/role",
		middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageUsers), uh.UpdateRole)
	app.Delete("/api/v1/users/:id",
		middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageUsers), uh.Remove)

	// Listings
	ls := &listsvc.Service{DB: db, Images: images}
	lh := &listhandler.Handlers{Service: ls}
	lks := &likesvc.Service{DB: db}
	lkh := &likehandler.Handlers{Service: lks}
	lg := app.Group("/api/v1/listings")
	lg.Get("/", lh.List)
	lg.Post("/", middleware.RequireAuth(), middleware.AuthorizePermission(constants.CreateListing), lh.Create)
	lg.Put("/", middleware.RequireAuth(), lh.BulkUpdate)
	lg.Delete("/", middleware.RequireAuth(), lh.BulkDelete)
	lg.Get("/my", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewOwnListings), lh.My)
	lg.Get("/:id", lh.Get)
	lg.Put("/:id", middleware.RequireAuth(), lh.Update)
	lg.Patch("/:id", middleware.RequireAuth(), lh.Update)
	lg.Delete("/:id", middleware.RequireAuth(), lh.Delete)
	lg.Post("/:id/like", lkh.Toggle)
	lg.Delete("/:id/like", lkh.Toggle)
	lg.Post("/:id/images", middleware.RequireAuth(), lh.AttachMedia)

	// Favorites
	fg := app.Group("/api/v1/favorites", middleware.RequireAuth())
	fg.Get("/", lkh.ListFavorites)
	fg.Post("/", lkh.AddFavorite)
	fg.Delete("/:listing_id", lkh.RemoveFavorite)

	// Locations
	locs := &locsvc.Service{DB: db}
	loch := &lochandler.Handlers{Service: locs}
	locg := app.Group("/api/v1/locations")
	locg.Get("/", loch.List)
	locg.Post("/", middleware.RequireAuth(), loch.Create)
	locg.Delete("/:id", middleware.RequireAuth(), loch.Delete)

	// Applications (leads)
	leads := &leadsvc.Service{DB: db, Images: images}
	leadh := &leadhandler.Handlers{Service: leads}
	ag := app.Group("/api/v1/applications")
	ag.Post("/", leadh.Submit)
	ag.Get("/", middleware.RequireAuth(), leadh.List)
	ag.Get("/:id", middleware.RequireAuth(), leadh.Get)
	ag.Put("/:id", middleware.RequireAuth(), leadh.Update)
	ag.Patch("/:id", middleware.RequireAuth(), leadh.Update)
	ag.Delete("/:id", middleware.RequireAuth(), leadh.Delete)

	// Site messages
	ms := &msgsvc.Service{DB: db}
	mh := &msghandler.Handlers{Service: ms}
	mg := app.Group("/api/v1/messages")
	mg.Get("/", mh.List)
	mg.Post("/", mh.Create)

	// Admin stats
	ss := &statsvc.Service{DB: db}
	sh := &stathandler.Handlers{Service: ss}
	app.Get("/api/v1/admin/stats",
		middleware.RequireAuth(), middleware.AuthorizePermission(constants.ViewStats), sh.Overview)
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
