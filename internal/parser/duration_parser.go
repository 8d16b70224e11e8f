package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	plainMinutesRegex = regexp.MustCompile(`^\d+(\.\d+)?$`)
	unitDurationRegex = regexp.MustCompile(`^(?:(\d+(?:\.\d+)?)h)?(?:(\d+(?:\.\d+)?)m(?:in)?)?$`)
)

// MaxWorkloadMinutes is the longest single entry accepted from the CLI
const MaxWorkloadMinutes = 24 * 60

// ParseWorkloadMinutes parses a logged duration into minutes
// Accepts formats like:
// - "90" -> 90 (bare number means minutes)
// - "45m", "45min" -> 45
// - "1.5h" -> 90
// - "1h30m", "2h 15m" -> 90, 135
func ParseWorkloadMinutes(input string) (float64, error) {
	s := strings.ToLower(strings.Join(strings.Fields(input), ""))
	if s == "" {
		return 0, fmt.Errorf("duration is empty")
	}

	var minutes float64
	if plainMinutesRegex.MatchString(s) {
		minutes, _ = strconv.ParseFloat(s, 64)
	} else {
		matches := unitDurationRegex.FindStringSubmatch(s)
		if matches == nil || (matches[1] == "" && matches[2] == "") {
			return 0, fmt.Errorf("invalid duration %q. Use: 90, 45m, 1.5h or 1h30m", input)
		}
		if matches[1] != "" {
			hours, _ := strconv.ParseFloat(matches[1], 64)
			minutes += hours * 60
		}
		if matches[2] != "" {
			mins, _ := strconv.ParseFloat(matches[2], 64)
			minutes += mins
		}
	}

	if minutes <= 0 {
		return 0, fmt.Errorf("duration must be positive")
	}
	if minutes > MaxWorkloadMinutes {
		return 0, fmt.Errorf("duration must be at most %dh", MaxWorkloadMinutes/60)
	}
	return math.Round(minutes*100) / 100, nil
}

// FormatMinutes renders minutes as "1h 30m"
func FormatMinutes(minutes float64) string {
	total := int(math.Round(minutes))
	h, m := total/60, total%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
