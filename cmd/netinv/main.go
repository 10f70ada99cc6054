package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"netinv/internal/api"
	"netinv/internal/app"
	"netinv/internal/config"
	"netinv/internal/encryption"
	"netinv/internal/objectstore"
)

func main() {
	if err := app.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "SiteAdd", "Import").
func newApp(ctx context.Context, operation string) (*app.App, error) {
	cfg, _, err := readConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(ctx, cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func readConfig() (*config.Config, string, error) {
	paths, err := app.DefaultPaths()
	if err != nil {
		return nil, "", fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading config: %w", err)
	}
	return cfg, paths.ConfigPath, nil
}

// closeApp closes a and reports a close failure unless the command already
// failed.
func closeApp(a *app.App, err *error) {
	if cerr := a.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// readSecret takes the environment variable env when set and prompts
// without echo otherwise.
func readSecret(env, prompt string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return v, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal to prompt on: set %s", env)
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	return string(b), nil
}

const passphraseEnv = "NETINV_PASSPHRASE"

var rootCmd = &cobra.Command{
	Use:          "netinv",
	Short:        "Network asset inventory",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := app.DefaultPaths()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID, _ := cmd.Flags().GetString("host-id")
		if hostID == "" {
			hostID = uuid.New().String()
		}
		cfg := config.NewConfig(hostID, paths.BaseDir)
		cfg.UserID, _ = cmd.Flags().GetString("user")

		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", path)
		fmt.Printf("Host ID:      %s\n", cfg.HostID)
		fmt.Printf("User:         %s\n", cfg.UserID)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Database:     %s\n", cfg.Database.Type)
		fmt.Printf("Storage:      %s\n", cfg.Storage.Type)
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		fmt.Printf("Backup:       %t\n", cfg.Backup.Enabled)
		fmt.Printf("Cascade mode: %s\n", cfg.Inventory.CascadeMode)
		fmt.Printf("Server:       %s (%d token(s))\n", cfg.Server.Addr, len(cfg.Server.Tokens))
		return nil
	},
}

var configStorageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage the object store",
}

var configStorageCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the object store is reachable and writable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}
		objects, err := objectstore.NewObjectStoreFromConfig(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}
		if err := objects.ValidateSetup(cmd.Context()); err != nil {
			return fmt.Errorf("checking %s storage: %w", cfg.Storage.Type, err)
		}
		fmt.Printf("Storage %s is ready\n", cfg.Storage.Type)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage backup encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the backup key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := readConfig()
		if err != nil {
			return err
		}
		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return err
		}
		if enc == nil {
			return errors.New("encryption is disabled in the config")
		}

		pass, err := readSecret(passphraseEnv, "Passphrase: ")
		if err != nil {
			return err
		}
		if os.Getenv(passphraseEnv) == "" {
			again, err := readSecret(passphraseEnv, "Repeat passphrase: ")
			if err != nil {
				return err
			}
			if again != pass {
				return errors.New("passphrases do not match")
			}
		}
		if err := enc.Setup(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Printf("Keys written to %s and %s\n", cfg.Encryption.PublicKeyPath, cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API bearer tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create USER",
	Short: "Create a bearer token for USER and store its hash in the config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user := strings.TrimSpace(args[0])
		if user == "" {
			return errors.New("user must not be empty")
		}
		cfg, path, err := readConfig()
		if err != nil {
			return err
		}

		token := api.NewToken()
		hash, err := api.HashToken(token)
		if err != nil {
			return err
		}
		cfg.Server.Tokens = append(cfg.Server.Tokens, config.TokenConfig{UserID: user, Hash: hash})
		if err := config.WriteToFile(path, cfg); err != nil {
			return err
		}

		fmt.Printf("Token for %s (shown once):\n%s\n", user, token)
		return nil
	},
}

var tokenHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the bcrypt hash of a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readSecret("NETINV_TOKEN", "Token: ")
		if err != nil {
			return err
		}
		hash, err := api.HashToken(strings.TrimSpace(token))
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configInitCmd.Flags().String("host-id", "", "Host ID (generated when empty)")
	configInitCmd.Flags().String("user", "", "Acting user of CLI commands")
	configCmd.AddCommand(configStorageCmd)
	configStorageCmd.AddCommand(configStorageCheckCmd)

	keysCmd.AddCommand(keysInitCmd)

	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenHashCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(tokenCmd)
}
