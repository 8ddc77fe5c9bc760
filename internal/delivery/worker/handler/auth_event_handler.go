// Package handler processes Pub/Sub push deliveries for the async
// authentication path.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"pushgate/config"
	deliverycontext "pushgate/internal/delivery/context"
	domainerrors "pushgate/internal/domain/errors"
	"pushgate/internal/infra/pubsub"
	"pushgate/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// EventTypeAuthRequested marks messages carrying an authentication attempt
// that needs a push notification.
const EventTypeAuthRequested = "AUTH_REQUESTED"

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// AuthEventHandler handles Pub/Sub push messages carrying authentication
// attempts and forwards them to the registered device.
type AuthEventHandler struct {
	verifyPushAuth bool
	logger         *slog.Logger
	deviceUC       usecase.DeviceUsecase
}

// AuthEventHandlerParams holds dependencies for the AuthEventHandler
type AuthEventHandlerParams struct {
	fx.In

	Config   *config.Config
	Logger   *slog.Logger
	DeviceUC usecase.DeviceUsecase
}

// NewAuthEventHandler creates a new Pub/Sub push handler
func NewAuthEventHandler(params AuthEventHandlerParams) *AuthEventHandler {
	// Push requests from Google Pub/Sub carry a signed OIDC token; local
	// publishers do not.
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == pubsub.ProviderGoogle &&
		params.Config.Env.Env != "develop"

	return &AuthEventHandler{
		verifyPushAuth: verifyPushAuth,
		logger:         params.Logger,
		deviceUC:       params.DeviceUC,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *AuthEventHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	if eventType := pushMsg.Message.Attributes["event_type"]; eventType != EventTypeAuthRequested {
		h.logger.Debug("[Worker] Ignoring message with unhandled event type",
			slog.String("event_type", eventType),
			slog.String("message_id", pushMsg.Message.MessageID),
		)

		return c.NoContent(http.StatusOK)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var req usecase.AuthNotificationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Error("[Worker] Failed to parse auth notification event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	requestID := h.extractRequestID(&pushMsg)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing authentication event",
		slog.String("push_id", req.PushID),
		slog.String("tenant_domain", req.TenantDomain),
	)

	if err := h.deviceUC.SendAuthNotification(ctx, &req); err != nil {
		retryable := isRetryable(err)
		reqLogger.Error("[Worker] Failed to send authentication notification",
			slog.String("push_id", req.PushID),
			slog.Any("error", err),
			slog.Bool("retryable", retryable),
		)
		// 503 triggers a Pub/Sub redelivery; client errors are dropped with
		// 200 so they do not retry forever.
		if retryable {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Authentication notification sent",
		slog.String("push_id", req.PushID),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID pulls the request ID from the message attributes, falling
// back to a fresh UUID.
func (h *AuthEventHandler) extractRequestID(pushMsg *PubSubMessage) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	return uuid.NewString()
}

// isRetryable reports whether a redelivery could succeed. Caller-correctable
// failures never become retryable.
func isRetryable(err error) bool {
	var clientErr domainerrors.ClientError
	if errors.As(err, &clientErr) {
		return false
	}

	return true
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience must match the URL of this push endpoint.
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	ctx := req.Context()
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
