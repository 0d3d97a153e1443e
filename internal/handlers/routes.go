package handlers

import (
	"github.com/gin-gonic/gin"
)

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })
	r.GET("/ws", func(c *gin.Context) {
		s.HandleWS(c.Writer, c.Request)
	})

	api := r.Group("/api")
	{
		api.POST("/session", s.CreateSession)

		user := api.Group("", s.AuthRequired())
		user.DELETE("/session", s.DeleteSession)
		user.POST("/heartbeat", s.Heartbeat)

		user.GET("/markets", s.ListMarkets)
		user.POST("/markets/refresh", s.RefreshMarkets)
		user.GET("/game-types", s.ListGameTypes)

		user.GET("/cart", s.GetCart)
		user.POST("/cart/items", s.AddItems)
		user.DELETE("/cart/items/:id", s.RemoveItem)
		user.POST("/cart/clear", s.ClearCart)
		user.GET("/cart/review", s.ReviewCart)
		user.POST("/cart/submit", s.SubmitCart)

		user.GET("/history", s.History)
		user.GET("/settings", s.GetSettings)
		user.PUT("/settings", s.UpdateSettings)
		user.GET("/slips", s.ListSlips)
		user.GET("/wallet", s.GetWallet)

		bookie := user.Group("/bookie", s.BookieRequired())
		bookie.GET("/players", s.ListPlayers)
		bookie.POST("/cart/submit", s.BookieSubmitCart)
		bookie.GET("/stats", s.PlacementStats)
	}
	return r
}
