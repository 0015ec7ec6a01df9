package config

// Version is the corral binary version.
// Set at build time via: -ldflags "-X github.com/corralhq/corral/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
