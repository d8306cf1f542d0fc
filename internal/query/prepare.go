// Package query turns a user query template into the exact SPARQL text sent
// to the endpoint.
//
// Only placeholder substitution and LIMIT/OFFSET appending are performed;
// the query itself is never parsed.
package query

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/sparqlconn/internal/connerr"
)

// DateLayout is the format of date range bounds and their substitutions.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

var (
	startDatePlaceholder = regexp.MustCompile(`(?i)\{dateRange\.startDate\}`)
	endDatePlaceholder   = regexp.MustCompile(`(?i)\{dateRange\.endDate\}`)
	numDaysPlaceholder   = regexp.MustCompile(`(?i)\{dateRange\.numDays\}`)
)

// DateRange is the host-negotiated reporting period.
type DateRange struct {
	StartDate string `json:"startDate" yaml:"start_date"`
	EndDate   string `json:"endDate" yaml:"end_date"`
}

// Pagination limits the rows requested. Zero fields are unset.
// StartRow is 1-based.
type Pagination struct {
	StartRow int `json:"startRow" yaml:"start_row"`
	RowCount int `json:"rowCount" yaml:"row_count"`
}

// Preparer substitutes date-range placeholders and appends pagination.
type Preparer struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives the prepared query at debug level. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewPreparer creates a Preparer using the wall clock.
func NewPreparer() *Preparer {
	return &Preparer{Now: time.Now}
}

// Prepare produces the final query text.
//
// With a complete DateRange, every case-insensitive occurrence of
// {dateRange.startDate}, {dateRange.endDate} and {dateRange.numDays} is
// replaced. An end date after now is clamped to yesterday and numDays counts
// both bounds inclusively. With Pagination, "\nLIMIT n" and then
// "\nOFFSET startRow-1" are appended for whichever fields are set.
//
// The only failure is an unparseable date bound, reported as
// QUERY_PREPARATION_FAILURE.
func (p *Preparer) Prepare(template string, dr *DateRange, pg *Pagination) (string, error) {
	prepared := template

	if dr != nil && dr.StartDate != "" && dr.EndDate != "" {
		start, end, numDays, err := p.resolve(dr)
		if err != nil {
			return "", connerr.Wrap(connerr.CodeQueryPreparation,
				"Failed to pre-process the query. Please, check your SPARQL query.", true, err)
		}
		prepared = startDatePlaceholder.ReplaceAllLiteralString(prepared, start.Format(DateLayout))
		prepared = endDatePlaceholder.ReplaceAllLiteralString(prepared, end.Format(DateLayout))
		prepared = numDaysPlaceholder.ReplaceAllLiteralString(prepared, strconv.Itoa(numDays))
	}

	if pg != nil {
		var b strings.Builder
		b.WriteString(prepared)
		if pg.RowCount > 0 {
			fmt.Fprintf(&b, "\nLIMIT %d", pg.RowCount)
		}
		if pg.StartRow > 0 {
			fmt.Fprintf(&b, "\nOFFSET %d", pg.StartRow-1)
		}
		prepared = b.String()
	}

	p.logger().Debug("query prepared", "query", prepared)
	return prepared, nil
}

// EffectiveRange returns the start date, the clamped end date and the
// inclusive day count used for substitution.
func (p *Preparer) EffectiveRange(dr DateRange) (start, end time.Time, numDays int, err error) {
	return p.resolve(&dr)
}

func (p *Preparer) resolve(dr *DateRange) (time.Time, time.Time, int, error) {
	start, err := time.Parse(DateLayout, dr.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("parse start date: %w", err)
	}
	end, err := time.Parse(DateLayout, dr.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("parse end date: %w", err)
	}

	now := p.now().UTC()
	if end.After(now) {
		y, m, d := now.Add(-day).Date()
		end = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	numDays := int(math.Round(float64(end.Sub(start))/float64(day))) + 1
	return start, end, numDays, nil
}

func (p *Preparer) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Preparer) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}
