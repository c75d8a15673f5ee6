package app

import (
	"github.com/gin-gonic/gin"
	"github.com/rescue-chip/core/internal/config"
	"github.com/rescue-chip/core/internal/middleware"
	"github.com/rescue-chip/core/internal/modules/auth"
	"github.com/rescue-chip/core/internal/modules/device"
	"github.com/rescue-chip/core/internal/modules/health"
	"github.com/rescue-chip/core/internal/modules/notify"
	"github.com/rescue-chip/core/internal/modules/profile"
	"github.com/rescue-chip/core/internal/modules/scan"
	"github.com/rescue-chip/core/internal/pkg/mail"
	"github.com/rescue-chip/core/internal/pkg/ratelimit"
	"github.com/rescue-chip/core/internal/pkg/response"
	"github.com/rescue-chip/core/internal/pkg/session"
	"github.com/rescue-chip/core/internal/pkg/sms"
	"github.com/rescue-chip/core/internal/pkg/storage"
)

const serviceVersion = "1.2.0"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	cfg := a.cfg
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	limiter := func(prefix string, opt config.LimiterOptions) ratelimit.Limiter {
		return ratelimit.NewRedis(a.rc.Raw(), ratelimit.Config{
			Prefix: prefix,
			Limit:  opt.Limit,
			Window: opt.Window(),
		}, a.logger)
	}
	requestDeviceLimiter := limiter("request-device", cfg.RateLimit.RequestDevice)
	verifyDeviceLimiter := limiter("verify-device", cfg.RateLimit.VerifyDevice)
	loginLimiter := limiter("login", cfg.RateLimit.Login)
	scanEmergencyLimiter := limiter("scan-emergency", cfg.RateLimit.ScanEmergency)

	mailer := mail.New(cfg.Mail)
	presigner := storage.NewPresigner(cfg.S3)

	var phones notify.PhoneSender
	if gw := sms.NewGateway(cfg.SMS); gw != nil {
		phones = gw
	}

	root := r.Group("")

	root.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})
	root.GET("/info", func(c *gin.Context) {
		response.OK(c, gin.H{
			"name":    "rescue-chip-core",
			"version": serviceVersion,
			"env":     cfg.Env,
		})
	})

	deviceSvc := device.NewService(
		device.NewStore(db),
		device.NewDirectory(db),
		session.NewRevoker(db),
		mailer,
		cfg.WebURL,
		a.logger,
	)
	device.NewHandler(deviceSvc).RegisterRoutes(root, authMW,
		middleware.RateLimitByIP(requestDeviceLimiter),
		middleware.RateLimitByIP(verifyDeviceLimiter))

	profileSvc := profile.NewService(db, presigner, a.logger.Named("profile"))
	profile.NewHandler(profileSvc).RegisterRoutes(root)

	notifySvc := notify.NewService(scanEmergencyLimiter, profileSvc, mailer, phones,
		cfg.CountryCode, a.logger.Named("notify"))

	scanSvc := scan.NewService(scan.NewGormStore(db), notifySvc, a.logger.Named("scan"))
	scan.NewHandler(scanSvc).RegisterRoutes(root)

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(root, authMW,
		middleware.RateLimitByIP(loginLimiter))

	health.RegisterRoutes(root, db, a.rc, a.sched, authMW)
}
