package entity

// PushSender describes one configured push delivery backend for a tenant.
// Properties carry provider specific configuration; secret-bearing entries
// hold an opaque vault reference once stored, never plaintext.
type PushSender struct {
	Name       string            `json:"name"`
	Provider   string            `json:"provider"`
	ProviderID string            `json:"providerId"`
	Properties map[string]string `json:"properties"`
}

// CloneProperties returns a shallow copy of the sender properties so provider
// pre/post processing never mutates the registry's view of the sender.
func (s PushSender) CloneProperties() map[string]string {
	props := make(map[string]string, len(s.Properties))
	for k, v := range s.Properties {
		props[k] = v
	}

	return props
}

// PushDeviceData is the provider-facing projection of a registered device.
type PushDeviceData struct {
	DeviceToken  string
	DeviceHandle string
	Provider     string
}
