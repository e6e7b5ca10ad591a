package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"portfolio-tracker/middleware"
)

// NewRouter wires the HTTP surface. Registration and login are public;
// portfolio and search require a bearer token.
func NewRouter(auth *AuthHandler, portfolio *PortfolioHandler, stocks *StocksHandler, jwtSecret string, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")

	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)

	protected := api.Group("/")
	protected.Use(middleware.JWTAuth(jwtSecret))
	{
		protected.GET("/portfolio", portfolio.Get)
		protected.POST("/portfolio", portfolio.Add)
		protected.DELETE("/portfolio/:id", portfolio.Delete)
		protected.GET("/stocks/search", stocks.Search)
	}

	return router
}
