package entity

// RegistrationContext is the ephemeral server-side state linking a pending
// device registration to its challenge, owner and consumption status. It is
// valid only for the deviceID it was stored under and may be consumed by at
// most one successful registration.
type RegistrationContext struct {
	Challenge         string `json:"challenge"`
	Username          string `json:"username"`
	TenantDomain      string `json:"tenantDomain"`
	Registered        bool   `json:"registered"`
	ForceRegistration bool   `json:"forceRegistration"`
}

// RegistrationRequest carries the payload a device submits to complete a
// pending registration. PublicKey is a base64 encoded X.509 SPKI key and
// Signature a base64 signature over "<challenge>.<deviceToken>".
type RegistrationRequest struct {
	DeviceID    string `json:"deviceId"`
	DeviceName  string `json:"deviceName"`
	DeviceModel string `json:"deviceModel"`
	DeviceToken string `json:"deviceToken"`
	PublicKey   string `json:"publicKey"`
	Signature   string `json:"signature"`
}

// RegistrationDiscoveryData is the transient payload returned by discovery.
// It is handed to the mobile app (usually as a QR code) and never persisted.
type RegistrationDiscoveryData struct {
	DeviceID               string `json:"deviceId"`
	Challenge              string `json:"challenge"`
	Username               string `json:"username"`
	Host                   string `json:"host"`
	TenantDomain           string `json:"tenantDomain"`
	TenantPath             string `json:"tenantPath"`
	OrganizationID         string `json:"organizationId,omitempty"`
	OrganizationName       string `json:"organizationName,omitempty"`
	OrganizationPath       string `json:"organizationPath,omitempty"`
	RegistrationEndpoint   string `json:"registrationEndpoint"`
	AuthenticationEndpoint string `json:"authenticationEndpoint"`
	RemoveDeviceEndpoint   string `json:"removeDeviceEndpoint"`
}

// OrgInfo describes the organization a tenant belongs to, as resolved by the
// external organization resolver.
type OrgInfo struct {
	OrganizationID   string
	OrganizationName string
	// PrimaryTenantDomain is the tenant domain of the primary organization
	// when the resolved tenant is itself an organization.
	PrimaryTenantDomain string
}
