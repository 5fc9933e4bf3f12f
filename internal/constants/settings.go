package constants

const (
	// Environment variables
	EnvDataDir          = "PROSPER_DATA_DIR"
	EnvCloud            = "PROSPER_CLOUD"
	EnvFirestoreProject = "PROSPER_FIRESTORE_PROJECT"
	EnvFirestoreCreds   = "PROSPER_FIRESTORE_CREDENTIALS"
	EnvUserID           = "PROSPER_USER_ID"
	EnvDBConnection     = "PROSPER_DB_CONNECTION"
	EnvTimezone         = "PROSPER_TIMEZONE"
	EnvEffects          = "PROSPER_EFFECTS"
	EnvDebug            = "PROSPER_DEBUG"
	EnvAPIAddr          = "PROSPER_API_ADDR"
	EnvFile             = ".env"

	// Cloud backends
	CloudNone      = "none"
	CloudFirestore = "firestore"
	CloudPostgres  = "postgres"

	// Effect modes
	EffectsOff     = "off"
	EffectsBell    = "bell"
	EffectsDesktop = "desktop"

	// Defaults
	DefaultTimezone = "Local"
	DefaultEffects  = EffectsBell
	DefaultAPIAddr  = "127.0.0.1:8080"
)

// API server timeouts, in seconds
const (
	APIRequestTimeout  = 30
	APIShutdownTimeout = 5
)
