package xsd

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidDuration is returned when a literal is not a PT#H#M#S duration.
var ErrInvalidDuration = errors.New("invalid xsd:duration")

var durationPattern = regexp.MustCompile(`(?i)^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.\d*)?S)?$`)

// ParseDuration converts an ISO-8601 duration restricted to hours, minutes
// and seconds into whole seconds. Each component is optional and fractional
// seconds truncate.
//
//	ParseDuration("PT2H30M") // 9000
//	ParseDuration("PT1.9S")  // 1
func ParseDuration(value string) (int64, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, value)
	}

	var seconds int64
	for i, unit := range []int64{3600, 60, 1} {
		part := m[i+1]
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidDuration, value, err)
		}
		if n > (math.MaxInt64-seconds)/unit {
			return 0, fmt.Errorf("%w: %q: out of range", ErrInvalidDuration, value)
		}
		seconds += n * unit
	}
	return seconds, nil
}
