package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/admin"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/auth"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/bids"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/chat"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/db"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/jobs"
	mware "github.com/0xsim0/My-Hammer-Syria-sub000/internal/middleware"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/notify"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/realtime"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/reviews"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/store"
	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/user"
)

func main() {
	_ = godotenv.Load()

	// Postgres when configured, in-memory store otherwise
	var st store.Store
	if os.Getenv("DB_HOST") != "" {
		db.Init()
		st = store.NewPostgres(db.Conn)
	} else {
		log.Println("DB_HOST not set, using in-memory store")
		st = store.NewMemory()
	}

	// Realtime publisher over redis, optional
	var pub *realtime.RedisPublisher
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		pub = realtime.NewRedisPublisher(addr, os.Getenv("REDIS_PASSWORD"))
	} else {
		log.Println("REDIS_ADDR not set, realtime delivery disabled")
	}

	// Email notifications, optional
	var mail *notify.EmailQueue
	if os.Getenv("REDIS_ADDR") != "" && os.Getenv("PLUNK_API_KEY") != "" {
		if err := notify.ConfigurePlunkFromEnv(); err != nil {
			log.Printf("email disabled: %v", err)
		} else {
			mail = notify.InitEmailQueue(os.Getenv("REDIS_ADDR"))
		}
	}

	var rtPub realtime.Publisher
	if pub != nil {
		rtPub = pub
	}
	dispatcher := notify.NewDispatcher(st, rtPub, mail)

	jobSvc := jobs.NewService(st, dispatcher)
	bidSvc := bids.NewService(st, dispatcher)
	chatSvc := chat.NewService(st, dispatcher)
	reviewSvc := reviews.NewService(st, dispatcher)

	jobH := jobs.NewHandler(jobSvc)
	bidH := bids.NewHandler(bidSvc)
	chatH := chat.NewHandler(chatSvc)
	reviewH := reviews.NewHandler(reviewSvc)
	notifH := notify.NewHandler(st)
	authH := auth.NewHandler(st)
	userH := user.NewHandler(st)
	bridge := realtime.NewBridge(st, pub)

	e := echo.New()

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "myhammer"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn != nil {
			if err := db.Conn.Ping(context.Background()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/signup", authH.Signup)
	authGroup.POST("/login", authH.Login)
	authGroup.POST("/bootstrap-admin", auth.BootstrapAdmin)

	// Public reads
	e.GET("/jobs", jobH.List)
	e.GET("/jobs/:id", jobH.Get)
	e.GET("/jobs/:id/review", reviewH.ForJob)
	e.GET("/craftsmen/:id/reviews", reviewH.ListForCraftsman)
	e.GET("/users/:id/profile", userH.GetPublicProfile)

	// Protected routes
	api := e.Group("")
	api.Use(mware.JWTMiddleware)

	api.GET("/auth/me", authH.Me)
	api.PATCH("/users/profile", user.UpdateProfile)

	api.POST("/jobs", jobH.Create, mware.RequireRoles(domain.RoleCustomer))
	api.GET("/jobs/me", jobH.Mine, mware.RequireRoles(domain.RoleCustomer))
	api.POST("/jobs/:id/complete", jobH.Complete)
	api.POST("/jobs/:id/cancel", jobH.Cancel)
	api.DELETE("/jobs/:id", jobH.Delete)

	api.POST("/jobs/:id/bids", bidH.Submit, mware.RequireRoles(domain.RoleCraftsman))
	api.GET("/jobs/:id/bids", bidH.ListForJob)
	api.POST("/jobs/:id/bids/:bid_id/accept", bidH.Accept)
	api.POST("/jobs/:id/bids/:bid_id/reject", bidH.Reject)
	api.POST("/jobs/:id/bids/:bid_id/withdraw", bidH.Withdraw)

	api.POST("/jobs/:id/review", reviewH.Create, mware.RequireRoles(domain.RoleCustomer))

	api.GET("/conversations", chatH.List)
	api.POST("/conversations/:id/messages", chatH.Post)
	api.GET("/conversations/:id/messages", chatH.History)
	api.POST("/conversations/:id/read", chatH.MarkRead)
	api.GET("/conversations/:id/unread", chatH.Unread)

	api.GET("/notifications", notifH.List)
	api.POST("/notifications/:id/read", notifH.MarkRead)
	api.POST("/notifications/read-all", notifH.MarkAllRead)

	api.POST("/realtime/auth", realtime.ChannelAuthHandler(st))
	api.GET("/realtime/ws", bridge.Handle)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(mware.JWTMiddleware)
	adminGroup.Use(mware.AdminGuard)

	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/users", admin.ListUsers)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
