package models

// GateProfile is the static access configuration of one physical checkpoint.
type GateProfile struct {
	Name     string `json:"name"`
	Location string `json:"location"`

	// Date restricts validity to one ISO day (YYYY-MM-DD). Empty means any day.
	Date string `json:"date,omitempty"`

	// Time is an inclusive "HHMM-HHMM" window. Empty means any time.
	Time string `json:"time,omitempty"`

	// AllowedPasses lists accepted pass types. Empty accepts all of them.
	AllowedPasses []string `json:"allowed_passes"`

	// SessionType is recorded on check-ins made at this gate.
	SessionType string `json:"session_type,omitempty"`
}

// Allows reports whether passType is structurally admissible at the gate.
func (g GateProfile) Allows(passType string) bool {
	if len(g.AllowedPasses) == 0 {
		return true
	}
	for _, p := range g.AllowedPasses {
		if p == passType {
			return true
		}
	}
	return false
}
