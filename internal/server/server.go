package server

import (
	"context"
	"net/http"
	"time"

	"slotbook/internal/auth"
	"slotbook/internal/booking"
	"slotbook/internal/config"
	"slotbook/internal/course"
	"slotbook/internal/session"
	"slotbook/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, cache *session.Cache) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(corsMiddleware())

	userRepo := user.NewRepository(db)
	courseRepo := course.NewRepository(db)
	sessionRepo := session.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret, cfg.AdminCreationSecret)
	courseService := course.NewService(courseRepo)
	sessionService := session.NewService(sessionRepo, courseRepo, cache)
	bookingService := booking.NewService(bookingRepo, sessionRepo, userRepo, cache)

	userHandler := user.NewHandler(userService)
	courseHandler := course.NewHandler(courseService)
	sessionHandler := session.NewHandler(sessionService)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/me/bookings", bookingHandler.GetMyBookings)

		protected.GET("/courses", courseHandler.ListCourses)
		protected.GET("/courses/:courseID", courseHandler.GetCourse)
		protected.GET("/sessions", sessionHandler.ListSessions)
		protected.GET("/sessions/:sessionID", sessionHandler.GetSession)

		protected.POST("/bookings", bookingHandler.CreateBooking)
		protected.GET("/bookings/:bookingID", bookingHandler.GetBooking)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)
	}

	// Schedule management is open to trainers as well as admins; everything
	// else under /admin stays admin-only.
	staff := router.Group("/admin")
	staff.Use(authMiddleware, auth.RequireRole(auth.RoleTrainer, auth.RoleAdmin))
	{
		staff.POST("/courses", courseHandler.CreateCourse)
		staff.PATCH("/courses/:courseID", courseHandler.UpdateCourse)
		staff.DELETE("/courses/:courseID", courseHandler.DeleteCourse)

		staff.POST("/sessions", sessionHandler.CreateSession)
		staff.PATCH("/sessions/:sessionID", sessionHandler.UpdateSession)
		staff.DELETE("/sessions/:sessionID", sessionHandler.DeleteSession)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.GET("/users/:userID", userHandler.GetUser)
		admin.PATCH("/users/:userID", userHandler.UpdateUser)
		admin.DELETE("/users/:userID", userHandler.DeleteUser)

		admin.GET("/bookings", bookingHandler.ListBookings)
		admin.PATCH("/bookings/:bookingID/status", bookingHandler.UpdateBookingStatus)
		admin.DELETE("/bookings/:bookingID", bookingHandler.DeleteBooking)
		admin.GET("/sessions/:sessionID/bookings", bookingHandler.ListSessionBookings)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:         ":" + port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Admin-Secret, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
