package entity

// PushNotificationData holds everything needed to build a provider-native
// push message: the visible title and body, the target device token, and the
// contextual attributes of the authentication attempt.
type PushNotificationData struct {
	NotificationTitle    string
	NotificationBody     string
	Username             string
	TenantDomain         string
	OrganizationID       string
	OrganizationName     string
	UserStoreDomain      string
	ApplicationName      string
	NotificationScenario string
	PushID               string
	DeviceToken          string
	DeviceID             string
	Challenge            string
	NumberChallenge      string
	IPAddress            string
	DeviceOS             string
	Browser              string
}

// AdditionalData flattens the non-empty contextual attributes into the data
// map sent alongside the notification. Organization users get organization
// attributes instead of the tenant domain.
func (d PushNotificationData) AdditionalData() map[string]string {
	data := make(map[string]string)
	isOrganizationUser := d.OrganizationID != "" && d.OrganizationName != ""

	put := func(key, value string) {
		if value != "" {
			data[key] = value
		}
	}

	put("username", d.Username)
	if isOrganizationUser {
		put("organizationId", d.OrganizationID)
		put("organizationName", d.OrganizationName)
	} else {
		put("tenantDomain", d.TenantDomain)
	}
	put("userStoreDomain", d.UserStoreDomain)
	put("applicationName", d.ApplicationName)
	put("notificationScenario", d.NotificationScenario)
	put("pushId", d.PushID)
	put("challenge", d.Challenge)
	put("numberChallenge", d.NumberChallenge)
	put("ipAddress", d.IPAddress)
	put("deviceOS", d.DeviceOS)
	put("browser", d.Browser)
	put("deviceId", d.DeviceID)

	return data
}
