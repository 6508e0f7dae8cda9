package ports

// RuntimeProbe reports the numeric runtime the service is executing in.
type RuntimeProbe interface {
	RuntimeVersion() string
	Platform() string
	// LibraryVersions maps each tracked library to its version, or domain.NotInstalled.
	LibraryVersions() map[string]string
	CPUFeatures() []string
	EnvFlags() map[string]string
}
