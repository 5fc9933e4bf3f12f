package constants

import "time"

const (
	AppName            = "prosper"
	DefaultKeyringUser = "database-connection"

	// KeyringFirestoreUser holds a Firestore service account JSON document
	KeyringFirestoreUser = "firestore-credentials"

	DefaultConfigDir = "~/.config/prosper"
	DefaultDBName    = "prosper.db"
	Version          = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DisplayDateFormat is the short date shown for days outside yesterday..tomorrow
	DisplayDateFormat = "Jan 2, 2006"

	// Relative day labels
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
	LabelTomorrow  = "Tomorrow"

	// HabitIDPrefix prefixes every generated habit id
	HabitIDPrefix = "habit-"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "prosper-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifyMaxRetries       = 3
	NotifyRetryDelay       = 100 * time.Millisecond
	NotifierLockfileName   = "prosper-notifier.lock"
	NotificationDurationMs = 3000
	TrayAppIdentifier      = "com.julianstephens.prosper"
	TrayExecutablePrefix   = "prosper-tray"
	TraySecretHeader       = "X-Prosper-Secret"

	// Storage metadata keys
	MetaCloudMigrated = "cloud_migrated"

	// Firestore collections, nested under users/{uid}
	CollectionUsers   = "users"
	CollectionHabits  = "habits"
	CollectionEntries = "entries"

	// DefaultUserID addresses the cloud store when no user id is configured
	DefaultUserID = "default-user"
)
