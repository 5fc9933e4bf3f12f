package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/julianstephens/prosper/internal/cli"
	"github.com/julianstephens/prosper/internal/config"
	"github.com/julianstephens/prosper/internal/keyring"
	"github.com/julianstephens/prosper/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store cloud credentials in the OS keyring."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove cloud credentials from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Show which credentials are stored."`
}

// KeyringSetCmd stores a PostgreSQL connection string or, with --firestore,
// the contents of a service account file.
type KeyringSetCmd struct {
	Value     string `arg:"" help:"PostgreSQL connection string, or a service account file with --firestore."`
	Firestore bool   `help:"Store Firestore service account credentials."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.Firestore {
		return cmd.setFirestore(ctx)
	}

	if !postgres.IsConnString(cmd.Value) {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}
	if err := postgres.ValidateConnString(cmd.Value); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.Println("⚠️  Warning: Connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.Set(keyring.DBConnection, cmd.Value); err != nil {
		return err
	}
	ctx.Println("✓ Connection string stored successfully in OS keyring")
	return nil
}

func (cmd *KeyringSetCmd) setFirestore(ctx *cli.Context) error {
	path, err := config.ExpandHome(cmd.Value)
	if err != nil {
		return err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read service account file: %w", err)
	}
	var creds struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(doc, &creds); err != nil {
		return fmt.Errorf("service account file is not valid JSON: %w", err)
	}
	if creds.Type != "service_account" {
		return fmt.Errorf("expected a service_account credentials file, got type %q", creds.Type)
	}

	if err := keyring.Set(keyring.FirestoreCredentials, string(doc)); err != nil {
		return err
	}
	ctx.Printf("✓ Firestore credentials for %s stored in OS keyring\n", creds.ClientEmail)
	ctx.Printf("  You can now delete %s\n", path)
	return nil
}

type KeyringDeleteCmd struct {
	Firestore bool `help:"Delete the Firestore credentials instead of the PostgreSQL connection string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret := keyring.DBConnection
	if cmd.Firestore {
		secret = keyring.FirestoreCredentials
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secret)
		}
		return err
	}
	ctx.Printf("✓ Deleted %s from OS keyring\n", secret)
	return nil
}

type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	ctx.Println("✓ OS keyring is available")

	for _, s := range keyring.Secrets {
		value, err := keyring.Get(s)
		switch {
		case err == nil && s == keyring.DBConnection:
			ctx.Printf("✓ %s: %s\n", s, maskPassword(value))
		case err == nil:
			ctx.Printf("✓ %s: stored\n", s)
		case errors.Is(err, keyring.ErrNotFound):
			ctx.Printf("ℹ %s: not stored\n", s)
		default:
			return err
		}
	}
	return nil
}

// maskPassword masks passwords in connection strings for display.
func maskPassword(connStr string) string {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		idx := strings.Index(connStr, "://")
		remaining := connStr[idx+3:]
		if atIdx := strings.LastIndex(remaining, "@"); atIdx != -1 {
			userInfo := remaining[:atIdx]
			if colonIdx := strings.Index(userInfo, ":"); colonIdx != -1 {
				return connStr[:idx+3] + userInfo[:colonIdx] + ":****" + connStr[idx+3+atIdx:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
