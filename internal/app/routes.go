package app

import (
	"github.com/codelens/core/internal/middleware"
	"github.com/codelens/core/internal/modules/auth"
	"github.com/codelens/core/internal/modules/health"
	"github.com/codelens/core/internal/modules/review"
	"github.com/codelens/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	api := r.Group(apiPrefix)

	health.RegisterRoutes(api, db)

	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)

	analyzer := review.NewAnalyzer(a.cfg.AI, a.logger)
	review.NewHandler(review.NewService(db, analyzer, a.logger)).RegisterRoutes(api, authMW)
}
