// config.go: settings struct and loading for the maillink engine.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// MainSettings contains top-level application settings.
type MainSettings struct {
	Name string // instance name used in logs and reports
	Log  struct {
		Level string // trace, debug, info, warn, error
	}
}

// SQLiteSettings contains SQLite database settings.
type SQLiteSettings struct {
	Enabled bool
	Path    string // path to the database file
}

// MySQLSettings contains MySQL database settings.
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Database string
	Host     string
	Port     string
}

// DatabaseSettings selects and configures the storage backend.
type DatabaseSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// DecaySettings controls lazy confidence decay of learned patterns.
type DecaySettings struct {
	Window int     // number of trailing outcomes considered
	Rate   float64 // rejection rate at or above which decay applies
	Factor float64 // multiplier applied to confidence on decay
}

// LinkerSettings contains the matching and committing policy.
type LinkerSettings struct {
	HighThreshold         float64       // at or above: commit link directly
	LowThreshold          float64       // below: drop candidate as noise
	Decay                 DecaySettings // pattern confidence decay policy
	ExtraStop             []string      // extra stopwords merged into the built-in set
	EntityCacheTTLMinutes int           // entity snapshot cache lifetime
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug mode

	Main     MainSettings
	Database DatabaseSettings
	Linker   LinkerSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("MAILLINK")
	viper.AutomaticEnv()

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file is fine, defaults plus env cover everything
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings instance, loading it if necessary.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	if _, err := Load(); err != nil {
		return nil
	}
	return settingsInstance
}

// GetDefaultConfigPaths returns the search paths for the config file:
// current directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "maillink"))
	}

	return paths, nil
}
