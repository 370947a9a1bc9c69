package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emmoscript/AutoSlot/internal/api/handler"
	"github.com/emmoscript/AutoSlot/internal/api/middleware"
	"github.com/emmoscript/AutoSlot/internal/service"
)

// Services groups everything the router wires into handlers.
type Services struct {
	Auth      *service.AuthService
	Parking   *service.ParkingService
	Pricing   *service.PricingService
	Simulator *service.SimulatorService
	Sessions  *service.SessionService
	WebSocket *handler.WebSocketManager
}

func SetupRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		health := gin.H{"status": "UP"}
		if s.WebSocket != nil {
			health["websocket_clients"] = s.WebSocket.ClientCount()
		}
		c.JSON(http.StatusOK, health)
	})

	if s.WebSocket != nil {
		wsHandler := handler.NewWebSocketHandler(s.WebSocket)
		r.GET("/ws", wsHandler.HandleWebSocket)
	}

	authMw := middleware.NewAuthMiddleware(s.Auth)
	authHandler := handler.NewAuthHandler(s.Auth)
	r.POST("/auth/login", authHandler.Login)

	api := r.Group("/api")

	lotH := handler.NewParkingLotHandler(s.Parking)
	spaceH := handler.NewParkingSpaceHandler(s.Parking, s.Simulator)
	priceH := handler.NewPricingHandler(s.Pricing)
	sensorH := handler.NewSensorHandler(s.Simulator, s.Parking)
	sessionH := handler.NewParkingSessionHandler(s.Sessions)
	lprH := handler.NewLPRHandler(s.Sessions)

	lotRoutes := api.Group("/lots")
	{
		lotRoutes.GET("", lotH.GetAllParkingLots)
		lotRoutes.POST("", lotH.CreateParkingLot)
		lotRoutes.GET("/:id", lotH.GetParkingLotByID)
		lotRoutes.GET("/:id/prices", priceH.GetLotPrices)
	}

	spaceRoutes := api.Group("/spaces")
	{
		spaceRoutes.POST("/reset", spaceH.ResetAll)
		spaceRoutes.GET("/:id", spaceH.GetParkingSpace)
		spaceRoutes.PATCH("/:id/availability", spaceH.UpdateAvailability)
		spaceRoutes.GET("/:id/price", priceH.GetSpacePrice)
	}

	pricingRoutes := api.Group("/pricing")
	{
		pricingRoutes.GET("/factors", priceH.GetFactors)
		pricingRoutes.GET("/preview", priceH.Preview)
		pricingRoutes.PATCH("/factors", authMw.Authenticate(), authMw.AuthorizeRole(service.RoleAdmin), priceH.UpdateFactors)
		pricingRoutes.POST("/toggle", authMw.Authenticate(), authMw.AuthorizeRole(service.RoleAdmin), priceH.Toggle)
	}

	sensorRoutes := api.Group("/sensors")
	{
		sensorRoutes.POST("/trigger", sensorH.TriggerEvent)
		sensorRoutes.POST("/simulate-random", sensorH.SimulateRandom)
		sensorRoutes.GET("/status", sensorH.GetStatus)
		sensorRoutes.GET("/events", sensorH.GetRecentEvents)
		sensorRoutes.GET("/auto", sensorH.GetAutoMode)
		sensorRoutes.POST("/auto/start", sensorH.StartAutoMode)
		sensorRoutes.POST("/auto/stop", sensorH.StopAutoMode)
	}

	sessionRoutes := api.Group("/sessions")
	{
		sessionRoutes.POST("/entry", sessionH.VehicleEntry)
		sessionRoutes.POST("/exit", sessionH.VehicleExit)
		sessionRoutes.GET("/active", sessionH.GetActiveSessions)
	}
	api.GET("/transactions", sessionH.GetTransactions)

	lprRoutes := api.Group("/lpr")
	{
		lprRoutes.GET("/history", lprH.GetHistory)
		lprRoutes.GET("/analytics", lprH.GetAnalytics)
	}

	return r
}
