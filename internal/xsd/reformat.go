// Package xsd converts SPARQL literal values tagged with XML Schema
// datatypes into the values the reporting host expects.
package xsd

import (
	"regexp"
	"strings"
)

// XML Schema datatype URIs with special handling.
const (
	Namespace = "http://www.w3.org/2001/XMLSchema#"

	Date     = Namespace + "date"
	DateTime = Namespace + "dateTime"
	Duration = Namespace + "duration"
)

var dateTimeHourPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}`)

var (
	dateStripper     = strings.NewReplacer("Z", "", "z", "", "-", "")
	dateTimeStripper = strings.NewReplacer("T", "", "-", "")
)

// Convert maps a literal to its host value based on its datatype URI.
//
//   - xsd:date: "Z" and "-" are removed ("2021-03-05Z" → "20210305")
//   - xsd:dateTime: truncated to the hour as YYYYMMDDHH; values without that
//     prefix pass through
//   - xsd:duration: total seconds as int64
//   - anything else: the value unchanged
//
// The only error is ErrInvalidDuration for an unparseable duration.
func Convert(value, datatype string) (any, error) {
	switch datatype {
	case Date:
		return dateStripper.Replace(value), nil
	case DateTime:
		if prefix := dateTimeHourPrefix.FindString(value); prefix != "" {
			return dateTimeStripper.Replace(prefix), nil
		}
		return value, nil
	case Duration:
		secs, err := ParseDuration(value)
		if err != nil {
			return nil, err
		}
		return secs, nil
	default:
		return value, nil
	}
}

// Reformat is the total form of Convert: an unparseable duration becomes 0.
func Reformat(value, datatype string) any {
	v, err := Convert(value, datatype)
	if err != nil {
		return int64(0)
	}
	return v
}
