package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"jasypt-go/internal/app"
	"jasypt-go/internal/config"
	"jasypt-go/internal/jasypt"
	"jasypt-go/internal/resource"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file. Without one, the tool runs on
// environment variables and -D properties alone.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if errors.Is(err, fs.ErrNotExist) {
		return config.NewStandaloneConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a JasyptApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Encrypt", "ImportProperties").
func newApp(cmd *cobra.Command, operation string, migrate bool) (*app.JasyptApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	defines, _ := cmd.Flags().GetStringArray("define")
	inline, err := parseDefines(defines)
	if err != nil {
		return nil, err
	}

	if prompt, _ := cmd.Flags().GetBool("prompt-password"); prompt {
		key := cfg.PropertyPrefix() + jasypt.KeyPassword
		password, err := promptPassword(fmt.Sprintf("%s: ", key))
		if err != nil {
			return nil, err
		}
		inline[key] = password
	}

	verbose, _ := cmd.Flags().GetBool("verbose")

	a, err := app.NewJasyptApp(cmd.Context(), cfg, operation, app.Options{
		Inline:  inline,
		Migrate: migrate,
		Verbose: verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:          "jasypt",
	Short:        "Encrypt, decrypt and resolve jasypt-style encrypted properties",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and the property store",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		for _, dir := range cfg.Resources.ClasspathDirs {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return fmt.Errorf("creating classpath directory: %w", err)
			}
		}

		a, err := newApp(cmd, "InitConfig", true)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir:       %s\n", defaults["base_dir"])
		fmt.Printf("Property store: %s\n", a.DatabasePath())
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Prefix:   %s\n", cfg.PropertyPrefix())
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Println("Sources:")
		for i, s := range cfg.Sources {
			switch s.Type {
			case "file":
				fmt.Printf("  %d. file %s\n", i+1, s.Path)
			case "database":
				fmt.Printf("  %d. database application=%s profile=%s\n", i+1, s.Application, s.Profile)
			default:
				fmt.Printf("  %d. %s\n", i+1, s.Type)
			}
		}
		fmt.Printf("Classpath: %s\n", strings.Join(cfg.Resources.ClasspathDirs, string(filepath.ListSeparator)))
		if cfg.Resources.AgeIdentityFile != "" {
			fmt.Printf("Age:       %s\n", cfg.Resources.AgeIdentityFile)
		}
		if s3 := cfg.Resources.S3; s3.Region != "" || s3.Endpoint != "" {
			fmt.Printf("S3:        region=%s endpoint=%s path_style=%t\n", s3.Region, s3.Endpoint, s3.UsePathStyle)
		}
		return nil
	},
}

// describe command
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Show the resolved encryptor configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DescribeEncryptor", false)
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := a.DescribeEncryptor()
		if err != nil {
			return err
		}

		fmt.Printf("Mode: %s\n", d.Mode)
		for _, f := range d.Fields {
			value := f.Value
			if f.Unset {
				value = "(unset)"
			}
			fmt.Printf("  %-45s %s\n", f.Key, value)
		}
		return nil
	},
}

// encrypt command
var encryptCmd = &cobra.Command{
	Use:   "encrypt VALUE",
	Short: "Encrypt a value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wrap, _ := cmd.Flags().GetBool("wrap")

		a, err := newApp(cmd, "Encrypt", false)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Encrypt(cmd.Context(), args[0], wrap)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

// decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt VALUE",
	Short: "Decrypt a value, bare or wrapped in ENC(...)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Decrypt", false)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Decrypt(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

// properties command
var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Work with the configured property sources",
}

var propertiesDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Print all properties with encrypted values decrypted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DecryptProperties", false)
		if err != nil {
			return err
		}
		defer a.Close()

		props, err := a.DecryptProperties(cmd.Context())
		if err != nil {
			return err
		}
		for _, k := range props.Keys() {
			fmt.Printf("%s=%s\n", k, props[k])
		}
		return nil
	},
}

var propertiesGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one property, decrypted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "GetProperty", false)
		if err != nil {
			return err
		}
		defer a.Close()

		v, ok, err := a.GetProperty(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("property not found: %s", args[0])
		}
		fmt.Println(v)
		return nil
	},
}

var propertiesImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a .properties, .yml or .toml file into the property store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _ := cmd.Flags().GetString("application")
		profile, _ := cmd.Flags().GetString("profile")

		a, err := newApp(cmd, "ImportProperties", true)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ImportProperties(cmd.Context(), args[0], application, profile)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d properties into %s\n", n, a.DatabasePath())
		return nil
	},
}

var propertiesSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store a property in the property store",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _ := cmd.Flags().GetString("application")
		profile, _ := cmd.Flags().GetString("profile")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp(cmd, "SetProperty", true)
		if err != nil {
			return err
		}
		defer a.Close()

		replaced, err := a.SetProperty(cmd.Context(), application, profile, args[0], args[1], encrypt)
		if err != nil {
			return err
		}
		if replaced {
			fmt.Printf("Updated %s\n", args[0])
		} else {
			fmt.Printf("Created %s\n", args[0])
		}
		return nil
	},
}

var propertiesDeleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Remove a property from the property store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, _ := cmd.Flags().GetString("application")
		profile, _ := cmd.Flags().GetString("profile")

		a, err := newApp(cmd, "DeleteProperty", true)
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.DeleteProperty(cmd.Context(), application, profile, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("property not found: %s", args[0])
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// key command
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Protect private-key files with age",
}

// ageIdentityFile returns the configured age identity file.
func ageIdentityFile() (string, error) {
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.Resources.AgeIdentityFile == "" {
		return "", fmt.Errorf("resources.age_identity_file is not configured")
	}
	return cfg.Resources.AgeIdentityFile, nil
}

var keyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the age identity used to decrypt .age key files",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := ageIdentityFile()
		if err != nil {
			return err
		}
		recipient, err := resource.GenerateAgeIdentity(path)
		if err != nil {
			return err
		}
		fmt.Printf("Identity written to %s\n", path)
		fmt.Printf("Recipient: %s\n", recipient)
		return nil
	},
}

var keySealCmd = &cobra.Command{
	Use:   "seal FILE",
	Short: "Encrypt FILE with age to FILE.age; reference it as the key location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := ageIdentityFile()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading key file: %w", err)
		}
		sealed, err := resource.SealAge(data, path)
		if err != nil {
			return err
		}
		dest := args[0] + resource.AgeSuffix
		if err := os.WriteFile(dest, sealed, 0600); err != nil {
			return fmt.Errorf("writing sealed key: %w", err)
		}
		fmt.Printf("Sealed key written to %s\n", dest)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the property store",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the property store schema up to date",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "MigrateDatabase", true)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("Property store at %s is up to date\n", a.DatabasePath())
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup DEST",
	Short: "Copy the property store to DEST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "BackupDatabase", true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.BackupDatabase(args[0]); err != nil {
			return err
		}
		fmt.Printf("Property store backed up to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayP("define", "D", nil, "Set a property (key=value); overrides every configured source")
	rootCmd.PersistentFlags().Bool("prompt-password", false, "Read the encryptor password from the terminal")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log info and debug messages to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// properties subcommands
	propertiesCmd.AddCommand(propertiesDecryptCmd)
	propertiesCmd.AddCommand(propertiesGetCmd)
	propertiesCmd.AddCommand(propertiesImportCmd)
	propertiesCmd.AddCommand(propertiesSetCmd)
	propertiesCmd.AddCommand(propertiesDeleteCmd)
	for _, c := range []*cobra.Command{propertiesImportCmd, propertiesSetCmd, propertiesDeleteCmd} {
		c.Flags().StringP("application", "a", "", "Application name (default \"application\")")
		c.Flags().StringP("profile", "p", "", "Profile name (default \"default\")")
	}
	propertiesSetCmd.Flags().Bool("encrypt", false, "Encrypt the value and store it wrapped, e.g. ENC(...)")

	// key subcommands
	keyCmd.AddCommand(keyInitCmd)
	keyCmd.AddCommand(keySealCmd)

	// db subcommands
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbBackupCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(encryptCmd)
	encryptCmd.Flags().Bool("wrap", false, "Wrap the result in the encrypted-value markers, e.g. ENC(...)")
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(dbCmd)
}
