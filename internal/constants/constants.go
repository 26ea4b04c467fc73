package constants

const (
	// AppName is used as the env var prefix for config overrides.
	AppName = "FLOCKTRACK"

	DefaultConfigPath1 = "/etc/flocktrack"
	DefaultConfigPath2 = "$HOME/.flocktrack"
)
