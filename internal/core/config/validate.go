package config

import (
	"fmt"
	"os"

	"github.com/colonyops/herald/internal/core/styles"
	"github.com/colonyops/herald/internal/core/validate"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// URLs, mute patterns, and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateEndpoints(),
		c.validateWorker(),
		c.validateMutePatterns(),
		criterio.Run("tui.theme", c.TUI.Theme, themeExists),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Backend.URL == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Backend",
			Item:     "backend.url",
			Message:  "no backend configured; devices will not be registered",
		})
	}
	if c.Delivery.URL == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Delivery",
			Item:     "delivery.url",
			Message:  "no delivery service configured; only `listen --demo` can acquire tokens",
		})
	}
	if c.Storage.Driver == StorageMemory {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "storage.driver",
			Message:  "memory storage forgets the registration cooldown on exit",
		})
	}
	if !c.Notifications.Enabled {
		warnings = append(warnings, ValidationWarning{
			Category: "Notifications",
			Item:     "notifications.enabled",
			Message:  "native notifications are disabled; permission will report unsupported",
		})
	}

	return warnings
}

// validateFileAccess checks config file, data directory and firebase credentials.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("firebase.credentials_file", c.Firebase.CredentialsFile, fileExistsIfSet),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateEndpoints() error {
	return criterio.ValidateStruct(
		validate.HTTPURLField("backend.url", c.Backend.URL),
		validate.HTTPURLField("delivery.url", c.Delivery.URL),
	)
}

func (c *Config) validateWorker() error {
	return criterio.ValidateStruct(
		criterio.Run("worker.script_path", c.Worker.ScriptPath, validate.Path),
		criterio.Run("worker.scope", c.Worker.Scope, validate.Path),
		validate.HTTPURLField("worker.base_url", c.Worker.BaseURL),
	)
}

func (c *Config) validateMutePatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Notifications.Mute {
		if err := validate.MutePattern(pattern); err != nil {
			errs = errs.Append(fmt.Sprintf("notifications.mute[%d]", i), err)
		}
	}
	return errs.ToError()
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func fileExistsIfSet(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}

func themeExists(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}
