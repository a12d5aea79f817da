package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talentlane/marketplace_be/internal/config"
	"github.com/talentlane/marketplace_be/internal/db"
	"github.com/talentlane/marketplace_be/internal/handlers"
	"github.com/talentlane/marketplace_be/internal/middleware"
	"github.com/talentlane/marketplace_be/internal/models"
	"github.com/talentlane/marketplace_be/internal/services/lifecycle"
	"github.com/talentlane/marketplace_be/internal/services/ratelimit"
	"github.com/talentlane/marketplace_be/internal/store"
	"github.com/talentlane/marketplace_be/internal/utils"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}

	if err := gdb.AutoMigrate(&models.User{}, &store.StoreSnapshot{}); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb := db.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	var mirror store.Mirror
	switch cfg.MirrorBackend {
	case "postgres":
		mirror = store.NewGormMirror(gdb)
	default:
		mirror = store.NewRedisMirror(rdb)
	}

	st := store.New(mirror, cfg.StoreNamespace, logger)
	if err := st.Load(context.Background()); err != nil {
		logger.Fatal("load store snapshot", zap.Error(err))
	}

	seedDemoUsers(gdb, logger)

	guard := ratelimit.NewGuard(
		ratelimit.NewRedisCounter(rdb),
		cfg.MaxJobPosts,
		cfg.MaxProposals,
		time.Duration(cfg.RateLimitWindowHours)*time.Hour,
	)
	lc := lifecycle.NewService(st, cfg.ChangeRequestRole)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	jobH := handlers.NewJobHandler(st, guard, gdb, logger)
	proposalH := handlers.NewProposalHandler(st, lc, guard, logger)
	milestoneH := handlers.NewMilestoneHandler(lc, logger)
	dashboardH := handlers.NewDashboardHandler(st)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/categories", jobH.GetCategories)
	api.Get("/jobs", jobH.ListPublic)
	api.Get("/jobs/:id", jobH.GetDetail)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)
	protected.Get("/dashboard", dashboardH.Get)

	// client only
	protected.Post("/client/jobs",
		middleware.RequireRoles("client"),
		jobH.PostJob,
	)
	protected.Get("/client/jobs",
		middleware.RequireRoles("client"),
		jobH.ListMine,
	)
	protected.Put("/client/jobs/:id",
		middleware.RequireRoles("client"),
		jobH.UpdateJob,
	)
	protected.Delete("/client/jobs/:id",
		middleware.RequireRoles("client"),
		jobH.DeleteJob,
	)
	protected.Get("/client/jobs/:id/proposals",
		middleware.RequireRoles("client"),
		proposalH.ListForJob,
	)
	protected.Post("/proposals/:id/accept",
		middleware.RequireRoles("client"),
		proposalH.Accept,
	)
	protected.Post("/proposals/:id/reject",
		middleware.RequireRoles("client"),
		proposalH.Reject,
	)

	// freelancer only
	protected.Post("/jobs/:id/proposals",
		middleware.RequireRoles("freelancer"),
		proposalH.Submit,
	)
	protected.Get("/freelancer/proposals",
		middleware.RequireRoles("freelancer"),
		proposalH.ListMine,
	)

	// either party; the lifecycle service enforces the ownership rules
	protected.Post("/jobs/:id/milestones/:mid/change-request", milestoneH.RequestChange)
	protected.Post("/jobs/:id/milestones/:mid/change-response", milestoneH.RespondToChange)

	logger.Info("listening", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.Fatal("listen", zap.Error(err))
	}
}

// seedDemoUsers installs the two demo accounts the seeded jobs point
// at. Safe to run on every boot.
func seedDemoUsers(gdb *gorm.DB, logger *zap.Logger) {
	demo := []models.User{
		{
			ID:        uuid.MustParse(store.DemoFreelancerID),
			FirstName: "John",
			LastName:  "Doe",
			Email:     "john@example.com",
			Country:   "United States",
			Role:      models.RoleFreelancer,
			IsActive:  true,
		},
		{
			ID:        uuid.MustParse(store.DemoClientID),
			FirstName: "Jane",
			LastName:  "Smith",
			Email:     "jane@example.com",
			Country:   "United States",
			Role:      models.RoleClient,
			IsActive:  true,
		},
	}

	for _, u := range demo {
		pw, err := utils.HashPassword("password123")
		if err != nil {
			logger.Error("hash demo password", zap.Error(err))
			return
		}
		u.Password = pw
		if err := gdb.Where("email = ?", u.Email).FirstOrCreate(&u).Error; err != nil {
			logger.Error("seed demo user", zap.String("email", u.Email), zap.Error(err))
		}
	}
}
