// Package idp is the outbound HTTP adapter to the identity provider the
// gateway runs next to. It backs the user, organization and push sender
// lookups of the device flows.
package idp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"pushgate/config"
	"pushgate/internal/domain/entity"
	"pushgate/internal/domain/service"

	"github.com/pkg/errors"
)

const defaultTimeout = 5 * time.Second

// Client resolves users, tenants and push senders through the identity
// provider REST APIs. It implements service.UserResolver,
// service.OrganizationResolver and service.SenderRegistry.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates the identity provider client from configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.IdP == nil || cfg.IdP.BaseURL == "" {
		return nil, errors.New("idp base URL is not configured")
	}

	timeout := cfg.IdP.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    cfg.IdP.BaseURL,
		apiKey:     cfg.IdP.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ResolveUserID resolves a username within a tenant to a stable user ID.
func (c *Client) ResolveUserID(ctx context.Context, username, tenantDomain string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/users/resolve?username=%s&tenantDomain=%s",
		c.baseURL, url.QueryEscape(username), url.QueryEscape(tenantDomain))

	var payload struct {
		UserID string `json:"userId"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return "", errors.Wrap(err, "failed to resolve user")
	}

	return payload.UserID, nil
}

// IsOrganization reports whether the tenant domain maps to an organization.
func (c *Client) IsOrganization(ctx context.Context, tenantDomain string) (bool, error) {
	info, err := c.tenantInfo(ctx, tenantDomain)
	if err != nil {
		return false, err
	}

	return info.IsOrganization, nil
}

// ResolveOrganization resolves the organization behind a tenant domain.
func (c *Client) ResolveOrganization(ctx context.Context, tenantDomain string) (*entity.OrgInfo, error) {
	info, err := c.tenantInfo(ctx, tenantDomain)
	if err != nil {
		return nil, err
	}

	return &entity.OrgInfo{
		OrganizationID:      info.OrganizationID,
		OrganizationName:    info.OrganizationName,
		PrimaryTenantDomain: info.PrimaryTenantDomain,
	}, nil
}

// ListPushSenders lists the push senders configured for a tenant.
func (c *Client) ListPushSenders(ctx context.Context, tenantDomain string) ([]entity.PushSender, error) {
	endpoint := fmt.Sprintf("%s/api/tenants/%s/push-senders", c.baseURL, url.PathEscape(tenantDomain))

	var payload struct {
		Senders []entity.PushSender `json:"senders"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to list push senders")
	}

	return payload.Senders, nil
}

type tenantInfo struct {
	IsOrganization      bool   `json:"isOrganization"`
	OrganizationID      string `json:"organizationId"`
	OrganizationName    string `json:"organizationName"`
	PrimaryTenantDomain string `json:"primaryTenantDomain"`
}

func (c *Client) tenantInfo(ctx context.Context, tenantDomain string) (*tenantInfo, error) {
	endpoint := fmt.Sprintf("%s/api/tenants/%s", c.baseURL, url.PathEscape(tenantDomain))

	var payload tenantInfo
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, errors.Wrap(err, "failed to resolve tenant")
	}

	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to decode identity provider response")
	}

	return nil
}

// Interface guards.
var (
	_ service.UserResolver         = (*Client)(nil)
	_ service.OrganizationResolver = (*Client)(nil)
	_ service.SenderRegistry       = (*Client)(nil)
)
