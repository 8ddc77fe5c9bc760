// Package handler contains the HTTP handlers of the push device API.
package handler

import (
	"log/slog"
	"net/http"

	"pushgate/internal/delivery/http/response"
	"pushgate/internal/domain/entity"
	"pushgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DeviceHandlerParams holds dependencies for DeviceHandler, injected by Fx.
type DeviceHandlerParams struct {
	fx.In

	DeviceUC usecase.DeviceUsecase
	Logger   *slog.Logger
}

// DeviceHandler holds dependencies for device-related handlers
type DeviceHandler struct {
	deviceUC usecase.DeviceUsecase
	logger   *slog.Logger
}

// NewDeviceHandler is the constructor for DeviceHandler
func NewDeviceHandler(params DeviceHandlerParams) *DeviceHandler {
	return &DeviceHandler{
		deviceUC: params.DeviceUC,
		logger:   params.Logger,
	}
}

// DiscoveryRequest represents the request body for opening a registration.
type DiscoveryRequest struct {
	Username          string `json:"username" validate:"required"`
	ForceRegistration bool   `json:"forceRegistration"`
}

// RegisterDeviceRequest represents the request body for completing a
// registration. PublicKey and Signature are base64 encoded.
type RegisterDeviceRequest struct {
	DeviceID    string `json:"deviceId" validate:"required"`
	DeviceName  string `json:"deviceName" validate:"required"`
	DeviceModel string `json:"deviceModel"`
	DeviceToken string `json:"deviceToken" validate:"required"`
	PublicKey   string `json:"publicKey" validate:"required"`
	Signature   string `json:"signature" validate:"required"`
}

// RemoveDeviceRequest carries the signed challenge token a device presents
// to remove its own registration.
type RemoveDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}

// EditDeviceRequest represents the request body for editing a device.
type EditDeviceRequest struct {
	Operations []usecase.DeviceEdit `json:"operations" validate:"required,min=1,dive"`
}

// tenantDomain resolves the tenant scope of the request from the route
// group the request came in on.
func tenantDomain(c echo.Context) string {
	if tenant := c.Param("tenantDomain"); tenant != "" {
		return tenant
	}

	return c.Param("organizationId")
}

// Discovery opens a pending registration and returns the discovery payload
// with its QR rendering.
func (h *DeviceHandler) Discovery(c echo.Context) error {
	var req DiscoveryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid discovery input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.deviceUC.RegistrationDiscovery(c.Request().Context(), req.Username, tenantDomain(c), req.ForceRegistration)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, result, "Registration discovery created")
}

// RegisterDevice completes a pending registration.
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	var req RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	device, err := h.deviceUC.RegisterDevice(c.Request().Context(), &entity.RegistrationRequest{
		DeviceID:    req.DeviceID,
		DeviceName:  req.DeviceName,
		DeviceModel: req.DeviceModel,
		DeviceToken: req.DeviceToken,
		PublicKey:   req.PublicKey,
		Signature:   req.Signature,
	}, tenantDomain(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, device, "Device registered successfully")
}

// GetDevice retrieves a device by its device ID.
func (h *DeviceHandler) GetDevice(c echo.Context) error {
	device, err := h.deviceUC.GetDevice(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, device, "")
}

// GetPublicKey retrieves the stored public key of a device.
func (h *DeviceHandler) GetPublicKey(c echo.Context) error {
	publicKey, err := h.deviceUC.GetPublicKey(c.Request().Context(), c.Param("deviceId"))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"publicKey": publicKey}, "")
}

// UnregisterDevice removes a device by its device ID.
func (h *DeviceHandler) UnregisterDevice(c echo.Context) error {
	if err := h.deviceUC.UnregisterDevice(c.Request().Context(), c.Param("deviceId")); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Device unregistered successfully")
}

// RemoveDeviceMobile removes a device on behalf of the device itself.
func (h *DeviceHandler) RemoveDeviceMobile(c echo.Context) error {
	var req RemoveDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid removal input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.deviceUC.UnregisterDeviceMobile(c.Request().Context(), c.Param("deviceId"), req.Token); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Device removed successfully")
}

// EditDevice applies whitelisted mutations to a device.
func (h *DeviceHandler) EditDevice(c echo.Context) error {
	var req EditDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid edit input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.deviceUC.EditDevice(c.Request().Context(), c.Param("deviceId"), req.Operations); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Device updated successfully")
}

// GetUserDevice retrieves the device registered for a user.
func (h *DeviceHandler) GetUserDevice(c echo.Context) error {
	device, err := h.deviceUC.GetDeviceByUserID(c.Request().Context(), c.Param("userId"), tenantDomain(c))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, device, "")
}

// UnregisterUserDevice removes the device registered for a user.
func (h *DeviceHandler) UnregisterUserDevice(c echo.Context) error {
	if err := h.deviceUC.UnregisterDeviceByUserID(c.Request().Context(), c.Param("userId"), tenantDomain(c)); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Device unregistered successfully")
}

// SendAuthNotification pushes an authentication challenge notification to
// the device registered for the user.
func (h *DeviceHandler) SendAuthNotification(c echo.Context) error {
	var req usecase.AuthNotificationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid notification input")
	}
	req.TenantDomain = tenantDomain(c)
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.deviceUC.SendAuthNotification(c.Request().Context(), &req); err != nil {
		return err
	}

	return response.Success(c, http.StatusAccepted, nil, "Authentication notification sent")
}
