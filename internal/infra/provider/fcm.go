// Package provider contains concrete push delivery backends.
package provider

import (
	"context"
	"encoding/base64"
	"log/slog"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"pushgate/internal/domain/entity"
	domainerrors "pushgate/internal/domain/errors"
	"pushgate/internal/domain/repository"
	"pushgate/internal/domain/service"
)

const (
	// ProviderNameFCM identifies the Firebase Cloud Messaging backend.
	ProviderNameFCM = "FCM"

	// SecretTypePushProvider is the vault secret type under which provider
	// credentials are filed.
	SecretTypePushProvider = "PUSH_PROVIDER_SECRET_PROPERTIES"

	// PropServiceAccount is the sender property holding the service account
	// JSON, base64 encoded at rest and replaced by a vault reference once the
	// sender is stored.
	PropServiceAccount = "serviceAccountContent"

	fcmSecretReference = "FCM-credentials"
)

// messagingClient is the slice of *messaging.Client used by the provider.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// clientFactory builds a messaging client from service account JSON.
type clientFactory func(ctx context.Context, serviceAccount []byte) (messagingClient, error)

func defaultClientFactory(ctx context.Context, serviceAccount []byte) (messagingClient, error) {
	opt := option.WithCredentialsJSON(serviceAccount)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	return client, nil
}

// FCMProvider delivers push notifications via Firebase Cloud Messaging.
// Messaging clients are cached per (tenant, provider instance) and rebuilt
// lazily after a credential rotation.
type FCMProvider struct {
	vault     repository.SecretVault
	logger    *slog.Logger
	newClient clientFactory

	mu      sync.Mutex
	clients map[string]messagingClient
}

// NewFCMProvider is the constructor for FCMProvider.
func NewFCMProvider(vault repository.SecretVault, logger *slog.Logger) *FCMProvider {
	return &FCMProvider{
		vault:     vault,
		logger:    logger,
		newClient: defaultClientFactory,
		clients:   make(map[string]messagingClient),
	}
}

var _ service.PushProvider = (*FCMProvider)(nil)

// Name returns the provider name.
func (p *FCMProvider) Name() string { return ProviderNameFCM }

// SendNotification delivers one push message to the device handle carried in
// data, using the credentials configured on sender.
func (p *FCMProvider) SendNotification(ctx context.Context, data entity.PushNotificationData, sender entity.PushSender, tenantDomain string) error {
	client, err := p.client(ctx, sender, tenantDomain)
	if err != nil {
		return err
	}

	message := &messaging.Message{
		Token: data.DeviceToken,
		Notification: &messaging.Notification{
			Title: data.NotificationTitle,
			Body:  data.NotificationBody,
		},
		Data: data.AdditionalData(),
	}

	if _, err := client.Send(ctx, message); err != nil {
		switch {
		case messaging.IsInvalidArgument(err):
			return &domainerrors.InvalidDeviceHandleError{Provider: ProviderNameFCM, Cause: err}
		case messaging.IsUnregistered(err):
			return &domainerrors.DeviceHandleExpiredError{Provider: ProviderNameFCM, Cause: err}
		default:
			return &domainerrors.ProviderSendError{Provider: ProviderNameFCM, Cause: err}
		}
	}

	p.logger.Debug("push notification sent",
		slog.String("provider", ProviderNameFCM),
		slog.String("tenantDomain", tenantDomain),
		slog.String("scenario", data.NotificationScenario))

	return nil
}

// RegisterDevice is a no-op: FCM needs no provider-side device registration.
func (p *FCMProvider) RegisterDevice(context.Context, entity.PushDeviceData, entity.PushSender) error {
	return nil
}

// UnregisterDevice is a no-op for FCM.
func (p *FCMProvider) UnregisterDevice(context.Context, entity.PushDeviceData, entity.PushSender) error {
	return nil
}

// UpdateDevice is a no-op for FCM.
func (p *FCMProvider) UpdateDevice(context.Context, entity.PushDeviceData, entity.PushSender) error {
	return nil
}

// PreProcessProperties base64 decodes the service account content so it can
// be used directly.
func (p *FCMProvider) PreProcessProperties(sender entity.PushSender) (map[string]string, error) {
	props := sender.CloneProperties()

	encoded := props[PropServiceAccount]
	if encoded == "" {
		return nil, &domainerrors.MissingPropertyError{Property: PropServiceAccount}
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode service account content")
	}
	props[PropServiceAccount] = string(decoded)

	return props, nil
}

// PostProcessProperties base64 encodes the service account content back to
// its storage form.
func (p *FCMProvider) PostProcessProperties(sender entity.PushSender) (map[string]string, error) {
	props := sender.CloneProperties()

	content := props[PropServiceAccount]
	if content == "" {
		return nil, &domainerrors.MissingPropertyError{Property: PropServiceAccount}
	}

	props[PropServiceAccount] = base64.StdEncoding.EncodeToString([]byte(content))

	return props, nil
}

// UpdateCredentials drops the cached messaging client for the sender so the
// next send rebuilds it with the rotated credentials.
func (p *FCMProvider) UpdateCredentials(sender entity.PushSender, tenantDomain string) error {
	p.mu.Lock()
	delete(p.clients, clientKey(tenantDomain, sender.ProviderID))
	p.mu.Unlock()

	return nil
}

// StoreSecretProperties files the service account content in the vault and
// returns the properties with the plaintext replaced by the vault reference.
func (p *FCMProvider) StoreSecretProperties(ctx context.Context, sender entity.PushSender) (map[string]string, error) {
	props := sender.CloneProperties()

	content := props[PropServiceAccount]
	if content == "" {
		return nil, &domainerrors.MissingPropertyError{Property: PropServiceAccount}
	}

	exists, err := p.vault.Exists(ctx, SecretTypePushProvider, fcmSecretReference)
	if err != nil {
		return nil, &domainerrors.SecretOperationError{Op: "store", Cause: err}
	}

	if exists {
		err = p.vault.Update(ctx, SecretTypePushProvider, fcmSecretReference, content)
	} else {
		err = p.vault.Store(ctx, SecretTypePushProvider, fcmSecretReference, content)
	}
	if err != nil {
		return nil, &domainerrors.SecretOperationError{Op: "store", Cause: err}
	}

	props[PropServiceAccount] = fcmSecretReference

	return props, nil
}

// RetrieveSecretProperties resolves the vault reference back to the service
// account content.
func (p *FCMProvider) RetrieveSecretProperties(ctx context.Context, sender entity.PushSender) (map[string]string, error) {
	props := sender.CloneProperties()

	if props[PropServiceAccount] == "" {
		return nil, &domainerrors.MissingPropertyError{Property: PropServiceAccount}
	}

	exists, err := p.vault.Exists(ctx, SecretTypePushProvider, fcmSecretReference)
	if err != nil {
		return nil, &domainerrors.SecretOperationError{Op: "retrieve", Cause: err}
	}
	if !exists {
		return nil, &domainerrors.SecretOperationError{
			Op:    "retrieve",
			Cause: errors.New("provider secret is not present in the vault"),
		}
	}

	content, err := p.vault.Retrieve(ctx, SecretTypePushProvider, fcmSecretReference)
	if err != nil {
		return nil, &domainerrors.SecretOperationError{Op: "retrieve", Cause: err}
	}

	props[PropServiceAccount] = content

	return props, nil
}

// DeleteSecretProperties removes the sender secret from the vault. Deleting
// an absent secret is a no-op.
func (p *FCMProvider) DeleteSecretProperties(ctx context.Context, sender entity.PushSender) error {
	exists, err := p.vault.Exists(ctx, SecretTypePushProvider, fcmSecretReference)
	if err != nil {
		return &domainerrors.SecretOperationError{Op: "delete", Cause: err}
	}
	if !exists {
		return nil
	}

	if err := p.vault.Delete(ctx, SecretTypePushProvider, fcmSecretReference); err != nil {
		return &domainerrors.SecretOperationError{Op: "delete", Cause: err}
	}

	return nil
}

// client returns the cached messaging client for (tenantDomain, sender),
// building it from the sender's decoded service account on first use.
func (p *FCMProvider) client(ctx context.Context, sender entity.PushSender, tenantDomain string) (messagingClient, error) {
	key := clientKey(tenantDomain, sender.ProviderID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[key]; ok {
		return client, nil
	}

	props, err := p.PreProcessProperties(sender)
	if err != nil {
		return nil, err
	}

	client, err := p.newClient(ctx, []byte(props[PropServiceAccount]))
	if err != nil {
		return nil, &domainerrors.ProviderSendError{
			Provider: ProviderNameFCM,
			Cause:    errors.Wrap(err, "failed to initialize messaging client"),
		}
	}
	p.clients[key] = client

	return client, nil
}

func clientKey(tenantDomain, providerID string) string {
	return tenantDomain + "-" + providerID
}
