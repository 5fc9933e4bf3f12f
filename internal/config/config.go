// Package config resolves prosper settings. Precedence, lowest first:
// built-in defaults, a .env file, PROSPER_* environment variables, then CLI
// flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/julianstephens/prosper/internal/constants"
	"github.com/julianstephens/prosper/internal/keyring"
	"github.com/julianstephens/prosper/internal/utils"
)

var lookupEnv = os.LookupEnv

type Config struct {
	DataDir              string
	Cloud                string
	FirestoreProject     string
	FirestoreCredentials string // path to a service account file
	UserID               string
	DBConnection         string
	Timezone             string
	Effects              string
	Debug                bool
	APIAddr              string
}

func Defaults() Config {
	return Config{
		DataDir:  constants.DefaultConfigDir,
		Cloud:    constants.CloudNone,
		UserID:   constants.DefaultUserID,
		Timezone: constants.DefaultTimezone,
		Effects:  constants.DefaultEffects,
		APIAddr:  constants.DefaultAPIAddr,
	}
}

// Load layers the first existing .env file from paths and the environment
// over the defaults. A missing .env file is not an error.
func Load(paths ...string) (Config, error) {
	file := map[string]string{}
	for _, p := range paths {
		values, err := godotenv.Read(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", p, err)
		}
		file = values
		break
	}

	get := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}

	cfg := Defaults()
	strs := map[string]*string{
		constants.EnvDataDir:          &cfg.DataDir,
		constants.EnvCloud:            &cfg.Cloud,
		constants.EnvFirestoreProject: &cfg.FirestoreProject,
		constants.EnvFirestoreCreds:   &cfg.FirestoreCredentials,
		constants.EnvUserID:           &cfg.UserID,
		constants.EnvDBConnection:     &cfg.DBConnection,
		constants.EnvTimezone:         &cfg.Timezone,
		constants.EnvEffects:          &cfg.Effects,
		constants.EnvAPIAddr:          &cfg.APIAddr,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := get(constants.EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", constants.EnvDebug, v, err)
		}
		cfg.Debug = debug
	}

	cfg.Cloud = strings.ToLower(cfg.Cloud)
	cfg.Effects = strings.ToLower(cfg.Effects)
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Cloud {
	case constants.CloudNone, constants.CloudPostgres:
	case constants.CloudFirestore:
		if c.FirestoreProject == "" {
			return fmt.Errorf("%s is required when %s=%s", constants.EnvFirestoreProject, constants.EnvCloud, constants.CloudFirestore)
		}
	default:
		return fmt.Errorf("invalid %s %q (want %s, %s or %s)", constants.EnvCloud, c.Cloud, constants.CloudNone, constants.CloudFirestore, constants.CloudPostgres)
	}

	switch c.Effects {
	case constants.EffectsOff, constants.EffectsBell, constants.EffectsDesktop:
	default:
		return fmt.Errorf("invalid %s %q", constants.EnvEffects, c.Effects)
	}

	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

// Dir returns DataDir with a leading ~ expanded.
func (c Config) Dir() (string, error) {
	return ExpandHome(c.DataDir)
}

// DBPath is the local SQLite database.
func (c Config) DBPath() (string, error) {
	dir, err := c.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.DefaultDBName), nil
}

func (c Config) Location() (*time.Location, error) {
	return utils.LoadLocation(c.Timezone)
}

// ResolveDBConnection returns the PostgreSQL connection string from the
// environment, falling back to the OS keyring. Both are trusted to carry a
// password; connection strings given as flags are not.
func (c Config) ResolveDBConnection() (string, error) {
	if c.DBConnection != "" {
		return c.DBConnection, nil
	}
	conn, err := keyring.Get(keyring.DBConnection)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no PostgreSQL connection configured: set %s or run 'prosper keyring set'", constants.EnvDBConnection)
		}
		return "", err
	}
	return conn, nil
}

// FirestoreCredentialsJSON returns a service account document stored in the
// keyring, or nil when a file path is configured or none is stored.
func (c Config) FirestoreCredentialsJSON() []byte {
	if c.FirestoreCredentials != "" {
		return nil
	}
	doc, err := keyring.Get(keyring.FirestoreCredentials)
	if err != nil {
		return nil
	}
	return []byte(doc)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
