package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"storerating/docs"
	apperrors "storerating/internal/errors"
	"storerating/internal/handler"
	"storerating/internal/middleware"
	"storerating/internal/model"
)

// apiPrefixes lists the mount points of the API. Every route is served both
// at the root and under /api.
var apiPrefixes = []string{"", "/api"}

// Handlers groups the endpoint handlers.
type Handlers struct {
	Auth   *handler.AuthHandler
	Admin  *handler.AdminHandler
	Owner  *handler.OwnerHandler
	Rating *handler.RatingHandler
}

// Options carries the cross-cutting pieces the router wires in.
type Options struct {
	Logger      *zap.Logger
	Gate        *middleware.Gate
	Metrics     *middleware.Metrics
	CORSOrigins []string
	SwaggerHost string
}

// Register wires routes and middleware.
func Register(e *echo.Echo, opts Options, h Handlers) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = ErrorHandler(log)

	e.Use(echomw.RequestID())
	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.StatusResponse{Status: "ok"})
	}
	e.GET("/", health)
	e.GET("/healthz", health)

	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	}

	if opts.SwaggerHost != "" {
		docs.SwaggerInfo.Host = opts.SwaggerHost
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	for _, prefix := range apiPrefixes {
		registerAPI(e.Group(prefix), opts.Gate, h)
	}
}

func registerAPI(g *echo.Group, gate *middleware.Gate, h Handlers) {
	authn := gate.Authenticate()

	// Public routes
	g.POST("/auth/signup", h.Auth.Signup)
	g.POST("/auth/login", h.Auth.Login)

	// Any authenticated role
	g.PATCH("/auth/password", h.Auth.ChangePassword, authn)
	g.POST("/auth/logout", h.Auth.Logout, authn)

	admin := g.Group("/admin", authn, gate.RequireRole(model.RoleAdmin))
	admin.POST("/users", h.Admin.CreateUser)
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/users", h.Admin.ListUsers)
	admin.GET("/users/:id", h.Admin.GetUser)
	admin.GET("/stores", h.Admin.ListStores)
	admin.POST("/stores", h.Admin.CreateStore)

	owner := g.Group("/owner", authn, gate.RequireRole(model.RoleOwner))
	owner.GET("/dashboard", h.Owner.Dashboard)

	user := g.Group("/user", authn, gate.RequireRole(model.RoleUser))
	user.GET("/stores", h.Rating.ListStores)
	user.POST("/ratings", h.Rating.SubmitRating)
	user.PATCH("/ratings/:storeId", h.Rating.UpdateRating)
}

// ErrorHandler renders every failure as {error, code} or, for request
// validation, {errors: [...]}. 5xx causes are logged, never sent.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		he := handler.ToHTTPError(err)
		var body interface{}
		switch m := he.Message.(type) {
		case apperrors.ErrorResponse, apperrors.ValidationResponse:
			body = m
		case string:
			body = apperrors.ErrorResponse{Error: m}
		default:
			body = apperrors.ErrorResponse{Error: http.StatusText(he.Code)}
		}
		if he.Code >= http.StatusInternalServerError {
			body = apperrors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(he.Code)
		} else {
			werr = c.JSON(he.Code, body)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
