package main

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/mailboxapp/mailbox/internal/auth"
	"github.com/mailboxapp/mailbox/internal/db"
	"github.com/mailboxapp/mailbox/internal/handlers"
	"github.com/mailboxapp/mailbox/internal/models"
	"github.com/mailboxapp/mailbox/pkg/config"
	"github.com/mailboxapp/mailbox/pkg/i18n"
)

func rateLimitMiddleware(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiterContext, err := limiterInstance.Get(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.JSON(http.StatusInternalServerError, handlers.Response{
				Success: false,
				Message: i18n.Translate("rate limiter error"),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiterContext.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limiterContext.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", limiterContext.Reset))

		if limiterContext.Reached {
			c.JSON(http.StatusTooManyRequests, handlers.Response{
				Success: false,
				Message: i18n.Translate("rate limit exceeded"),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseBodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func serverErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		blw := &responseBodyWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Printf(
				"HTTP %d %s %s ip=%s duration=%s errors=%q response=%q",
				c.Writer.Status(),
				c.Request.Method,
				c.Request.URL.Path,
				c.ClientIP(),
				time.Since(start).Truncate(time.Millisecond),
				c.Errors.ByType(gin.ErrorTypeAny).String(),
				strings.TrimSpace(blw.body.String()),
			)
		}
	}
}

func panicRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf(
			"panic recovered method=%s path=%s ip=%s error=%v\n%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.ClientIP(),
			recovered,
			debug.Stack(),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, handlers.Response{
			Success: false,
			Message: i18n.Translate("internal server error"),
		})
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if len(os.Args) > 1 {
		if err := runCommand(cfg, os.Args[1:]); err != nil {
			log.Fatalf("%v", err)
		}
		return
	}

	if err := runServer(cfg); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func runCommand(cfg *config.Config, args []string) error {
	command := args[0]

	switch command {
	case "status":
		return runStatus(cfg, os.Stdout, args[1:])
	case "-h", "--help", "help":
		printUsage(os.Stdout)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(out *os.File) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  mailbox           Start the API server")
	fmt.Fprintln(out, "  mailbox status    Show application statistics")
	fmt.Fprintln(out, "  mailbox status --json")
}

func runServer(cfg *config.Config) error {
	os.MkdirAll(cfg.UploadPath, 0755)
	os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755)

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	handlers.SetProduction(cfg.Production())

	authSvc := auth.NewWithTokenTTL(database, cfg.JWTSecret, cfg.TokenTTL)

	registry := auth.NewOwnerRegistry()
	registry.Register(auth.KindMessage, models.MessageOwner{DB: database})
	registry.Register(auth.KindReception, models.ReceptionOwner{DB: database})
	registry.Register(auth.KindDossier, models.DossierOwner{DB: database})
	registry.Register(auth.KindContact, models.ContactOwner{DB: database})

	authHandler := handlers.NewAuthHandler(authSvc, database)
	msgHandler := handlers.NewMessageHandler(database, cfg.UploadPath, cfg.MaxUploadSize)
	rcpHandler := handlers.NewReceptionHandler(database)
	dosHandler := handlers.NewDossierHandler(database)
	ctHandler := handlers.NewContactHandler(database)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(serverErrorLogger())
	router.Use(gin.Logger())
	router.Use(panicRecovery())
	router.MaxMultipartMemory = cfg.MaxUploadSize

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	info := gin.H{
		"name":    "MailBox API",
		"version": "1.0.0",
	}
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/info", func(c *gin.Context) {
			c.JSON(http.StatusOK, info)
		})

		loginLimiter := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 5})
		registerLimiter := limiter.New(memory.NewStore(), limiter.Rate{Period: time.Minute, Limit: 2})

		api.POST("/auth/register", rateLimitMiddleware(registerLimiter), authHandler.Register)
		api.POST("/auth/login", rateLimitMiddleware(loginLimiter), authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authHandler.AuthMiddleware())
	{
		protected.GET("/auth/verify", authHandler.VerifyToken)
		protected.GET("/users/profile", authHandler.GetProfile)
		protected.PUT("/users/profile", authHandler.UpdateProfile)
		protected.PUT("/users/password", authHandler.ChangePassword)
		protected.GET("/users/search", authHandler.SearchUsers)

		protected.POST("/messages", msgHandler.Create)
		protected.GET("/messages", msgHandler.List)
		protected.GET("/messages/stats", msgHandler.Stats)
		protected.GET("/messages/:id", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.Get)
		protected.PUT("/messages/:id", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.Update)
		protected.POST("/messages/:id/send", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.SendDraft)
		protected.DELETE("/messages/:id", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.Delete)
		protected.DELETE("/messages/:id/permanent", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.DeletePermanent)
		protected.POST("/messages/:id/attachments", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.UploadAttachment)
		protected.GET("/messages/:id/attachments", handlers.RequireOwner(registry, auth.KindMessage), msgHandler.ListAttachments)

		protected.GET("/receptions", rcpHandler.List)
		protected.GET("/receptions/stats", rcpHandler.Stats)
		protected.GET("/receptions/unread", rcpHandler.Unread)
		protected.PUT("/receptions/read-all", rcpHandler.MarkAllRead)
		protected.GET("/receptions/:id", handlers.RequireOwner(registry, auth.KindReception), rcpHandler.Get)
		protected.PUT("/receptions/:id/read", handlers.RequireOwner(registry, auth.KindReception), rcpHandler.MarkRead)
		protected.PUT("/receptions/:id/etat", handlers.RequireOwner(registry, auth.KindReception), rcpHandler.UpdateEtat)
		protected.PUT("/receptions/:id/dossier", handlers.RequireOwner(registry, auth.KindReception), rcpHandler.Move)
		protected.DELETE("/receptions/:id", handlers.RequireOwner(registry, auth.KindReception), rcpHandler.Delete)
		protected.DELETE("/receptions/:id/permanent", handlers.RequireOwner(registry, auth.KindReception), rcpHandler.DeletePermanent)

		protected.POST("/dossiers", dosHandler.Create)
		protected.GET("/dossiers", dosHandler.List)
		protected.GET("/dossiers/stats", dosHandler.Stats)
		protected.GET("/dossiers/:id", handlers.RequireOwner(registry, auth.KindDossier), dosHandler.Get)
		protected.PUT("/dossiers/:id", handlers.RequireOwner(registry, auth.KindDossier), dosHandler.Rename)
		protected.DELETE("/dossiers/:id", handlers.RequireOwner(registry, auth.KindDossier), dosHandler.Delete)
		protected.GET("/dossiers/:id/messages", handlers.RequireOwner(registry, auth.KindDossier), dosHandler.Messages)
		protected.PUT("/dossiers/:id/messages", handlers.RequireOwner(registry, auth.KindDossier), dosHandler.MoveMessages)

		protected.POST("/contacts", ctHandler.Create)
		protected.GET("/contacts", ctHandler.List)
		protected.GET("/contacts/stats", ctHandler.Stats)
		protected.GET("/contacts/search", ctHandler.Search)
		protected.GET("/contacts/search-users", ctHandler.SearchUsers)
		protected.GET("/contacts/check/:userId", ctHandler.Check)
		protected.GET("/contacts/:id", handlers.RequireOwner(registry, auth.KindContact), ctHandler.Get)
		protected.DELETE("/contacts/:id", handlers.RequireOwner(registry, auth.KindContact), ctHandler.Delete)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Response{
			Success: false,
			Message: i18n.Translate("not found"),
		})
	})

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	log.Printf("Starting server on %s", addr)

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigint
		log.Println("\nShutting down gracefully...")
		os.Exit(0)
	}()

	return router.Run(addr)
}
