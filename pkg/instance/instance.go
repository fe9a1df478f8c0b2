package instance

import "os"

// EnvInstanceID overrides the identifier attached to gateway log lines.
const EnvInstanceID = "STOREFRONT_INSTANCE_ID"

// GetID returns the process identifier: the env override, then the host
// name, then "local".
func GetID() string {
	if id := os.Getenv(EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
