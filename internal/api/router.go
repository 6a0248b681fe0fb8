package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/placementcell/recruit-portal/internal/api/handler"
	"github.com/placementcell/recruit-portal/internal/api/middleware"
	"github.com/placementcell/recruit-portal/internal/core/domain"
	"github.com/placementcell/recruit-portal/internal/core/ports"
	"github.com/placementcell/recruit-portal/internal/pkg/validation"
)

// formOverhead is the allowance for non-file multipart fields on top of the
// maximum resume size.
const formOverhead = 1 << 20

// Options carries the services the HTTP surface is built on.
type Options struct {
	Auth           ports.AuthService
	Profiles       ports.ProfileService
	AuditLog       ports.AuditLogService
	JWTSecret      string
	MaxResumeBytes int64
	Logger         zerolog.Logger

	// Registerer receives the HTTP request metrics. Defaults to the
	// process-wide Prometheus registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all application routes registered.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Logger)
	e.Validator = validation.New()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(httpMetrics(opts.Registerer))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(opts.Auth)
	profileHandler := handler.NewProfileHandler(opts.Profiles, opts.MaxResumeBytes)
	adminHandler := handler.NewAdminHandler(opts.AuditLog)
	authMiddleware := middleware.Auth(opts.JWTSecret)
	formLimit := echomiddleware.BodyLimit(fmt.Sprintf("%dB", opts.MaxResumeBytes+formOverhead))

	students := middleware.RBAC(domain.RoleStudent)
	recruiters := middleware.RBAC(domain.RoleRecruiter)
	studentsOrRecruiters := middleware.RBAC(domain.RoleStudent, domain.RoleRecruiter)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Profile routes ---
	profile := e.Group("/profile", authMiddleware)
	profile.GET("", profileHandler.Home)
	profile.GET("/student", profileHandler.GetStudent, students)
	profile.POST("/student", profileHandler.UpdateStudent, students, formLimit)
	profile.GET("/student/view", profileHandler.ViewStudent, studentsOrRecruiters)
	profile.GET("/student/view/:id", profileHandler.ViewStudent, studentsOrRecruiters)
	profile.GET("/recruiter", profileHandler.GetRecruiter, recruiters)
	profile.POST("/recruiter", profileHandler.UpdateRecruiter, recruiters, formLimit)
	profile.GET("/recruiter/view", profileHandler.ViewRecruiter, recruiters)
	profile.GET("/resume/:id", profileHandler.DownloadResume, studentsOrRecruiters)
	profile.GET("/resume/view/:id", profileHandler.ViewResume, studentsOrRecruiters)

	// --- Admin routes ---
	admin := e.Group("/admin", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/logs", adminHandler.Logs)

	return e
}

func httpMetrics(reg prometheus.Registerer) echo.MiddlewareFunc {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "recruit",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	})
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
