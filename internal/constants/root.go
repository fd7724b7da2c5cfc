package constants

import "time"

const (
	AppName            = "habitus"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitus"
	DefaultConfigPath  = "~/.config/habitus/habitus.db"
	DefaultConfigFile  = "~/.config/habitus/config.yaml"
	Version            = "v0.3.0"

	// EnvPrefix prefixes every environment override read by the config layer
	EnvPrefix = "HABITUS"

	// EnvDBConnection holds a database path or PostgreSQL connection string
	EnvDBConnection = "HABITUS_DB_CONNECTION"

	// Watch constants
	WatchLockfileName = "habitus-watch.lock"
	WatchJobTimeout   = 2 * time.Minute

	// Notify constants
	NotifyTimeout      = 5 * time.Second
	NotifySecretHeader = "X-Habitus-Secret"
)
