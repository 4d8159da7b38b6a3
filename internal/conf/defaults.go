// defaults.go: default configuration values.
package conf

import "github.com/spf13/viper"

// setDefaultConfig sets the default values for all configuration parameters.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Main configuration
	viper.SetDefault("main.name", "maillink")
	viper.SetDefault("main.log.level", "info")

	// Database configuration
	viper.SetDefault("database.sqlite.enabled", true)
	viper.SetDefault("database.sqlite.path", "maillink.db")
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.username", "maillink")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "maillink")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")

	// Linker policy. Thresholds and decay are operator-tunable, the
	// shipped values match the studio's current review workflow.
	viper.SetDefault("linker.highthreshold", 0.85)
	viper.SetDefault("linker.lowthreshold", 0.50)
	viper.SetDefault("linker.decay.window", 5)
	viper.SetDefault("linker.decay.rate", 0.5)
	viper.SetDefault("linker.decay.factor", 0.5)
	viper.SetDefault("linker.extrastop", []string{})
	viper.SetDefault("linker.entitycachettlminutes", 10)
}
