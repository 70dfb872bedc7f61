package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"go.uber.org/multierr"
)

var windowPattern = regexp.MustCompile(`^\d{4}-\d{4}$`)

// DefaultGates returns the gate profiles of the event venue.
func DefaultGates() map[string]models.GateProfile {
	return map[string]models.GateProfile{
		"Gate 1": {
			Name:          "Gate 1 - Exhibition Day 1",
			Location:      "Exhibition Hall",
			Date:          "2025-11-25",
			Time:          "0001-1730",
			AllowedPasses: []string{models.PassExhibitionDay1, models.PassExhibitor},
			SessionType:   models.PassExhibitionDay1,
		},
		"Gate 2": {
			Name:          "Gate 2 - Exhibition Day 2",
			Location:      "Exhibition Hall",
			Date:          "2025-11-26",
			Time:          "0700-1730",
			AllowedPasses: []string{models.PassExhibitionDay2, models.PassExhibitor},
			SessionType:   models.PassExhibitionDay2,
		},
		"Gate 3": {
			Name:          "Gate 3 - Interactive Sessions",
			Location:      "Zorawar Hall",
			Date:          "2025-11-26",
			Time:          "1020-1330",
			AllowedPasses: []string{models.PassInteractiveSessions},
			SessionType:   models.PassInteractiveSessions,
		},
		"Gate 4": {
			Name:          "Gate 4 - Plenary Session",
			Location:      "Zorawar Hall",
			Date:          "2025-11-26",
			Time:          "1500-1615",
			AllowedPasses: []string{models.PassPlenary},
			SessionType:   models.PassPlenary,
		},
		"Main Entrance": {
			Name:     "Main Entrance",
			Location: "Manekshaw Centre",
		},
	}
}

// LoadGates returns DefaultGates when path is empty, otherwise the profiles
// of the JSON object at path keyed by gate id. Every profile is validated.
func LoadGates(path string) (map[string]models.GateProfile, error) {
	if path == "" {
		return DefaultGates(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gates: %w", err)
	}

	var gates map[string]models.GateProfile
	if err := json.Unmarshal(data, &gates); err != nil {
		return nil, fmt.Errorf("parse gates: %w", err)
	}
	if len(gates) == 0 {
		return nil, fmt.Errorf("%w: no gates in %s", common.ErrorValidation, path)
	}

	if err := ValidateGates(gates); err != nil {
		return nil, err
	}
	return gates, nil
}

// ValidateGates checks date and time window formats.
func ValidateGates(gates map[string]models.GateProfile) error {
	var errs []error
	for id, g := range gates {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, fmt.Errorf("%w: empty gate id", common.ErrorValidation))
		}
		if g.Date != "" {
			if _, err := time.Parse(common.DateLayout, g.Date); err != nil {
				errs = append(errs, fmt.Errorf("%w: gate %q: date %q", common.ErrorValidation, id, g.Date))
			}
		}
		if g.Time != "" {
			if !windowPattern.MatchString(g.Time) || g.Time[:4] > g.Time[5:] {
				errs = append(errs, fmt.Errorf("%w: gate %q: time window %q", common.ErrorValidation, id, g.Time))
			}
		}
	}
	return multierr.Combine(errs...)
}
