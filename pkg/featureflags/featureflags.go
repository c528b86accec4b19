package featureflags

import (
	"fmt"
	"strings"
	"time"

	"github.com/motorforge/workshop-backend/pkg/config"
	"github.com/motorforge/workshop-backend/pkg/enums"
)

// Motor-items modes accepted from configuration.
const (
	ModeOff   = "off"
	ModeStaff = "staff"
	ModeAll   = "all"
)

// Flags resolves feature gates from static configuration.
type Flags struct {
	motorItemsMode      string
	motorItemsRolloutAt *time.Time
}

// New parses the feature flag configuration once at boot.
func New(cfg config.FeatureFlagsConfig) (*Flags, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.MotorItems))
	if mode == "" {
		mode = ModeStaff
	}
	switch mode {
	case ModeOff, ModeStaff, ModeAll:
	default:
		return nil, fmt.Errorf("invalid motor items mode %q", cfg.MotorItems)
	}

	flags := &Flags{motorItemsMode: mode}
	if raw := strings.TrimSpace(cfg.MotorItemsRolloutAt); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid motor items rollout timestamp %q: %w", raw, err)
		}
		flags.motorItemsRolloutAt = &at
	}
	return flags, nil
}

// MotorItemsEnabled reports whether the caller may use the motor-items intake
// step. Staff roles follow the configured mode directly; customers only get
// the step once the rollout instant has passed.
func (f *Flags) MotorItemsEnabled(role enums.Role, now time.Time) bool {
	if f == nil {
		return false
	}
	switch f.motorItemsMode {
	case ModeOff:
		return false
	case ModeAll:
		return true
	}
	if role.IsStaff() {
		return true
	}
	if f.motorItemsRolloutAt == nil {
		return false
	}
	return !now.Before(*f.motorItemsRolloutAt)
}
