// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pushgate/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	DeviceHandler *handler.DeviceHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	deviceHandler *handler.DeviceHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		deviceHandler: params.DeviceHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application. The same
// device API is mounted once per tenant scope (/t/<tenantDomain>) and once
// per organization scope (/o/<organizationId>), matching the paths the
// discovery payload advertises.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	tenantGroup := e.Group("/t/:tenantDomain")
	r.registerDeviceRoutes(tenantGroup)

	orgGroup := e.Group("/o/:organizationId")
	r.registerDeviceRoutes(orgGroup)
}

func (r *router) registerDeviceRoutes(g *echo.Group) {
	pushAuth := g.Group("/push-auth")
	{
		pushAuth.POST("/discovery", r.deviceHandler.Discovery)
		pushAuth.POST("/devices", r.deviceHandler.RegisterDevice)
		pushAuth.GET("/devices/:deviceId", r.deviceHandler.GetDevice)
		pushAuth.DELETE("/devices/:deviceId", r.deviceHandler.UnregisterDevice)
		pushAuth.PATCH("/devices/:deviceId", r.deviceHandler.EditDevice)
		pushAuth.GET("/devices/:deviceId/public-key", r.deviceHandler.GetPublicKey)
		pushAuth.POST("/devices/:deviceId/remove", r.deviceHandler.RemoveDeviceMobile)

		pushAuth.GET("/users/:userId/device", r.deviceHandler.GetUserDevice)
		pushAuth.DELETE("/users/:userId/device", r.deviceHandler.UnregisterUserDevice)

		pushAuth.POST("/authenticate", r.deviceHandler.SendAuthNotification)
	}
}
