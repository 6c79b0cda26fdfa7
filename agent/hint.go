package agent

import (
	"fmt"
	"regexp"
	"strconv"
)

// locationHintPattern matches the structured coordinate prefix the chat page
// attaches after a map interaction.
var locationHintPattern = regexp.MustCompile(
	`^\[My current location: latitude (-?\d+(?:\.\d+)?), longitude (-?\d+(?:\.\d+)?)\]`,
)

// FormatLocationHint renders the coordinate prefix for a user message.
func FormatLocationHint(lat, lon float64) string {
	return fmt.Sprintf("[My current location: latitude %s, longitude %s]",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
	)
}

// ParseLocationHint extracts coordinates from a hinted user message.
// Returns ok=false when no valid hint prefixes the text.
func ParseLocationHint(text string) (lat, lon float64, ok bool) {
	m := locationHintPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}
