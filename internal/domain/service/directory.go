package service

import (
	"context"

	"pushgate/internal/domain/entity"
)

// UserResolver resolves a username within a tenant to a stable user ID.
// Backed by the external user store; out of scope for this service.
type UserResolver interface {
	ResolveUserID(ctx context.Context, username, tenantDomain string) (string, error)
}

// OrganizationResolver resolves tenant/organization display information.
// IsOrganization reports whether the tenant domain maps to an organization.
type OrganizationResolver interface {
	IsOrganization(ctx context.Context, tenantDomain string) (bool, error)
	ResolveOrganization(ctx context.Context, tenantDomain string) (*entity.OrgInfo, error)
}

// SenderRegistry lists the push senders configured for a tenant.
type SenderRegistry interface {
	ListPushSenders(ctx context.Context, tenantDomain string) ([]entity.PushSender, error)
}
