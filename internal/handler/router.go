package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"redemption-engine/internal/handler/api"
	"redemption-engine/internal/handler/middleware"
	"redemption-engine/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	logger *middleware.Logger,
	redemptionHandler *api.RedemptionHandler,
	credentialHandler *api.CredentialHandler,
	fraudCaseHandler *api.FraudCaseHandler,
) {
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, redemptionHandler, credentialHandler, fraudCaseHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	redemptionHandler *api.RedemptionHandler,
	credentialHandler *api.CredentialHandler,
	fraudCaseHandler *api.FraudCaseHandler,
) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		redemptions := apiGroup.Group("/redemptions")
		{
			addRoutes(redemptions, []route{
				{Method: http.MethodPost, Path: "", Handler: redemptionHandler.Redeem},
				{Method: http.MethodPost, Path: "/sync", Handler: redemptionHandler.SyncOffline},
			})
		}

		credentials := apiGroup.Group("/credentials")
		{
			addRoutes(credentials, []route{
				{Method: http.MethodPost, Path: "/token", Handler: credentialHandler.IssueToken},
				{Method: http.MethodPost, Path: "/short-code", Handler: credentialHandler.IssueShortCode},
			})
		}

		fraudCases := apiGroup.Group("/fraud-cases")
		{
			addRoutes(fraudCases, []route{
				{Method: http.MethodGet, Path: "", Handler: fraudCaseHandler.Search},
				{Method: http.MethodGet, Path: "/statistics", Handler: fraudCaseHandler.Statistics},
				{Method: http.MethodGet, Path: "/:id", Handler: fraudCaseHandler.GetByID},
				{Method: http.MethodPost, Path: "/:id/claim", Handler: fraudCaseHandler.Claim},
				{Method: http.MethodPost, Path: "/:id/review", Handler: fraudCaseHandler.Review},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
