package provider

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pushgate/internal/domain/entity"
	domainerrors "pushgate/internal/domain/errors"
)

type fakeMessagingClient struct {
	sent    []*messaging.Message
	sendErr error
}

func (f *fakeMessagingClient) Send(_ context.Context, message *messaging.Message) (string, error) {
	f.sent = append(f.sent, message)
	if f.sendErr != nil {
		return "", f.sendErr
	}

	return "projects/test/messages/1", nil
}

type fakeVault struct {
	secrets map[string]string
	err     error
}

func newFakeVault() *fakeVault {
	return &fakeVault{secrets: make(map[string]string)}
}

func (f *fakeVault) key(secretType, name string) string { return secretType + "/" + name }

func (f *fakeVault) Exists(_ context.Context, secretType, name string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.secrets[f.key(secretType, name)]

	return ok, nil
}

func (f *fakeVault) Store(_ context.Context, secretType, name, value string) error {
	if f.err != nil {
		return f.err
	}
	f.secrets[f.key(secretType, name)] = value

	return nil
}

func (f *fakeVault) Update(_ context.Context, secretType, name, value string) error {
	return f.Store(nil, secretType, name, value)
}

func (f *fakeVault) Retrieve(_ context.Context, secretType, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	return f.secrets[f.key(secretType, name)], nil
}

func (f *fakeVault) Delete(_ context.Context, secretType, name string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.secrets, f.key(secretType, name))

	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSender() entity.PushSender {
	return entity.PushSender{
		Name:       "push-sender",
		Provider:   ProviderNameFCM,
		ProviderID: "provider-1",
		Properties: map[string]string{
			PropServiceAccount: base64.StdEncoding.EncodeToString([]byte(`{"project_id":"test"}`)),
		},
	}
}

func newTestProvider(client *fakeMessagingClient, vault *fakeVault) (*FCMProvider, *int) {
	p := NewFCMProvider(vault, testLogger())
	factoryCalls := 0
	p.newClient = func(context.Context, []byte) (messagingClient, error) {
		factoryCalls++

		return client, nil
	}

	return p, &factoryCalls
}

func TestSendNotification(t *testing.T) {
	client := &fakeMessagingClient{}
	p, _ := newTestProvider(client, newFakeVault())

	data := entity.PushNotificationData{
		NotificationTitle:    "Sign in request",
		NotificationBody:     "Approve the sign in attempt",
		Username:             "alice",
		TenantDomain:         "carbon.super",
		DeviceToken:          "handle-1",
		DeviceID:             "d1",
		Challenge:            "d1/c1",
		NotificationScenario: "AUTHENTICATION",
	}

	require.NoError(t, p.SendNotification(context.Background(), data, testSender(), "carbon.super"))

	require.Len(t, client.sent, 1)
	message := client.sent[0]
	assert.Equal(t, "handle-1", message.Token)
	assert.Equal(t, "Sign in request", message.Notification.Title)
	assert.Equal(t, "d1/c1", message.Data["challenge"])
	assert.Equal(t, "carbon.super", message.Data["tenantDomain"])
}

func TestSendNotification_GenericFailure(t *testing.T) {
	client := &fakeMessagingClient{sendErr: errors.New("backend unavailable")}
	p, _ := newTestProvider(client, newFakeVault())

	err := p.SendNotification(context.Background(), entity.PushNotificationData{DeviceToken: "h1"}, testSender(), "carbon.super")

	var sendErr *domainerrors.ProviderSendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, ProviderNameFCM, sendErr.Provider)
}

func TestSendNotification_ClientCachedPerTenantAndProvider(t *testing.T) {
	client := &fakeMessagingClient{}
	p, factoryCalls := newTestProvider(client, newFakeVault())
	ctx := context.Background()
	data := entity.PushNotificationData{DeviceToken: "h1"}

	require.NoError(t, p.SendNotification(ctx, data, testSender(), "carbon.super"))
	require.NoError(t, p.SendNotification(ctx, data, testSender(), "carbon.super"))
	assert.Equal(t, 1, *factoryCalls)

	// Another tenant gets its own client.
	require.NoError(t, p.SendNotification(ctx, data, testSender(), "other.tenant"))
	assert.Equal(t, 2, *factoryCalls)
}

func TestUpdateCredentials_DropsCachedClient(t *testing.T) {
	client := &fakeMessagingClient{}
	p, factoryCalls := newTestProvider(client, newFakeVault())
	ctx := context.Background()
	data := entity.PushNotificationData{DeviceToken: "h1"}

	require.NoError(t, p.SendNotification(ctx, data, testSender(), "carbon.super"))
	require.NoError(t, p.UpdateCredentials(testSender(), "carbon.super"))
	require.NoError(t, p.SendNotification(ctx, data, testSender(), "carbon.super"))

	assert.Equal(t, 2, *factoryCalls)
}

func TestPreProcessProperties(t *testing.T) {
	p := NewFCMProvider(newFakeVault(), testLogger())

	props, err := p.PreProcessProperties(testSender())
	require.NoError(t, err)
	assert.Equal(t, `{"project_id":"test"}`, props[PropServiceAccount])

	// The sender itself is untouched.
	sender := testSender()
	_, err = p.PreProcessProperties(sender)
	require.NoError(t, err)
	assert.NotEqual(t, `{"project_id":"test"}`, sender.Properties[PropServiceAccount])
}

func TestPreProcessProperties_Missing(t *testing.T) {
	p := NewFCMProvider(newFakeVault(), testLogger())

	sender := testSender()
	sender.Properties = map[string]string{}

	_, err := p.PreProcessProperties(sender)

	var missing *domainerrors.MissingPropertyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, PropServiceAccount, missing.Property)
}

func TestPostProcessProperties(t *testing.T) {
	p := NewFCMProvider(newFakeVault(), testLogger())

	sender := testSender()
	sender.Properties[PropServiceAccount] = `{"project_id":"test"}`

	props, err := p.PostProcessProperties(sender)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(props[PropServiceAccount])
	require.NoError(t, err)
	assert.Equal(t, `{"project_id":"test"}`, string(decoded))
}

func TestStoreSecretProperties(t *testing.T) {
	vault := newFakeVault()
	p := NewFCMProvider(vault, testLogger())

	props, err := p.StoreSecretProperties(context.Background(), testSender())
	require.NoError(t, err)

	assert.Equal(t, fcmSecretReference, props[PropServiceAccount])
	stored, err := vault.Retrieve(context.Background(), SecretTypePushProvider, fcmSecretReference)
	require.NoError(t, err)
	assert.Equal(t, testSender().Properties[PropServiceAccount], stored)
}

func TestStoreSecretProperties_UpdatesExisting(t *testing.T) {
	vault := newFakeVault()
	p := NewFCMProvider(vault, testLogger())
	ctx := context.Background()

	_, err := p.StoreSecretProperties(ctx, testSender())
	require.NoError(t, err)

	rotated := testSender()
	rotated.Properties[PropServiceAccount] = base64.StdEncoding.EncodeToString([]byte(`{"project_id":"rotated"}`))

	_, err = p.StoreSecretProperties(ctx, rotated)
	require.NoError(t, err)

	stored, err := vault.Retrieve(ctx, SecretTypePushProvider, fcmSecretReference)
	require.NoError(t, err)
	assert.Equal(t, rotated.Properties[PropServiceAccount], stored)
}

func TestRetrieveSecretProperties(t *testing.T) {
	vault := newFakeVault()
	p := NewFCMProvider(vault, testLogger())
	ctx := context.Background()

	stored, err := p.StoreSecretProperties(ctx, testSender())
	require.NoError(t, err)

	sender := testSender()
	sender.Properties = stored

	props, err := p.RetrieveSecretProperties(ctx, sender)
	require.NoError(t, err)
	assert.Equal(t, testSender().Properties[PropServiceAccount], props[PropServiceAccount])
}

func TestRetrieveSecretProperties_NotStored(t *testing.T) {
	p := NewFCMProvider(newFakeVault(), testLogger())

	_, err := p.RetrieveSecretProperties(context.Background(), testSender())

	var secretErr *domainerrors.SecretOperationError
	require.ErrorAs(t, err, &secretErr)
	assert.Equal(t, "retrieve", secretErr.Op)
}

func TestDeleteSecretProperties(t *testing.T) {
	vault := newFakeVault()
	p := NewFCMProvider(vault, testLogger())
	ctx := context.Background()

	_, err := p.StoreSecretProperties(ctx, testSender())
	require.NoError(t, err)

	require.NoError(t, p.DeleteSecretProperties(ctx, testSender()))

	exists, err := vault.Exists(ctx, SecretTypePushProvider, fcmSecretReference)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is a no-op.
	require.NoError(t, p.DeleteSecretProperties(ctx, testSender()))
}

func TestSecretOperations_VaultFailure(t *testing.T) {
	vault := newFakeVault()
	vault.err = errors.New("vault unreachable")
	p := NewFCMProvider(vault, testLogger())
	ctx := context.Background()

	_, err := p.StoreSecretProperties(ctx, testSender())
	var secretErr *domainerrors.SecretOperationError
	require.ErrorAs(t, err, &secretErr)
	assert.Equal(t, "store", secretErr.Op)

	err = p.DeleteSecretProperties(ctx, testSender())
	require.ErrorAs(t, err, &secretErr)
	assert.Equal(t, "delete", secretErr.Op)
}
