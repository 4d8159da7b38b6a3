// validate.go: settings validation.
package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks the loaded settings for inconsistencies that would
// make a batch run misbehave silently.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if !settings.Database.SQLite.Enabled && !settings.Database.MySQL.Enabled {
		errs = append(errs, errors.New("no database backend enabled"))
	}
	if settings.Database.SQLite.Enabled && settings.Database.MySQL.Enabled {
		errs = append(errs, errors.New("both sqlite and mysql enabled, pick one"))
	}
	if settings.Database.SQLite.Enabled && settings.Database.SQLite.Path == "" {
		errs = append(errs, errors.New("sqlite enabled but no path configured"))
	}

	l := settings.Linker
	if l.HighThreshold < 0 || l.HighThreshold > 1 {
		errs = append(errs, fmt.Errorf("linker.highthreshold %.2f outside [0,1]", l.HighThreshold))
	}
	if l.LowThreshold < 0 || l.LowThreshold > 1 {
		errs = append(errs, fmt.Errorf("linker.lowthreshold %.2f outside [0,1]", l.LowThreshold))
	}
	if l.LowThreshold > l.HighThreshold {
		errs = append(errs, fmt.Errorf("linker.lowthreshold %.2f above highthreshold %.2f",
			l.LowThreshold, l.HighThreshold))
	}
	if l.Decay.Window <= 0 {
		errs = append(errs, fmt.Errorf("linker.decay.window must be positive, got %d", l.Decay.Window))
	}
	if l.Decay.Rate < 0 || l.Decay.Rate > 1 {
		errs = append(errs, fmt.Errorf("linker.decay.rate %.2f outside [0,1]", l.Decay.Rate))
	}
	if l.Decay.Factor <= 0 || l.Decay.Factor >= 1 {
		errs = append(errs, fmt.Errorf("linker.decay.factor %.2f outside (0,1)", l.Decay.Factor))
	}

	return errors.Join(errs...)
}
