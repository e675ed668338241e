package render

import (
	"strings"

	"github.com/fakeyudi/cropguard/internal/api"
)

// Tone is the colour class a value is shown in.
type Tone int

const (
	Good Tone = iota
	Warn
	Bad
)

func (t Tone) String() string {
	switch t {
	case Good:
		return "good"
	case Warn:
		return "warn"
	default:
		return "bad"
	}
}

// StatusTone is Good only for a healthy result.
func StatusTone(status string) Tone {
	if status == api.StatusHealthy {
		return Good
	}
	return Bad
}

// ConfidenceTone grades a confidence percentage.
func ConfidenceTone(confidence float64) Tone {
	switch {
	case confidence >= 80:
		return Good
	case confidence >= 60:
		return Warn
	default:
		return Bad
	}
}

// SeverityTone maps a severity label; unknown labels are Warn.
func SeverityTone(severity string) Tone {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "none", "low":
		return Good
	case "medium":
		return Warn
	case "high":
		return Bad
	default:
		return Warn
	}
}
