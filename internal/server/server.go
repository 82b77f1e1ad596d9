package server

import (
	"log/slog"

	"decor-storefront/internal/handler"
	"decor-storefront/internal/metrics"
	"decor-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	webhookHandler  *handler.WebhookHandler
}

func NewServer(checkoutService service.CheckoutService, fulfillmentService service.FulfillmentService, log *slog.Logger) *Server {
	e := echo.New()

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	checkoutHandler := handler.NewCheckoutHandler(checkoutService, fulfillmentService)
	webhookHandler := handler.NewWebhookHandler(fulfillmentService, log)

	s := &Server{
		echo:            e,
		checkoutHandler: checkoutHandler,
		webhookHandler:  webhookHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/quote", s.checkoutHandler.Quote)
	checkout.POST("/session", s.checkoutHandler.BuildSession)

	api.GET("/rentals/:productID/availability", s.checkoutHandler.Availability)
	api.GET("/orders/:id/invoice", s.checkoutHandler.Invoice)

	// -------- provider webhooks / callbacks --------
	payments := api.Group("/payments")
	payments.GET("/success", s.checkoutHandler.HandleSuccess)
	payments.POST("/webhook", s.webhookHandler.ProviderWebhook)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
