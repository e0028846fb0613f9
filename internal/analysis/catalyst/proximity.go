// Package catalyst relates option expirations to scheduled catalysts
// (earnings, trial readouts), screens chains around them and scores
// catalyst-timed trades.
//
// Dates that do not parse are skipped rather than reported: the functions
// here always return a result, possibly empty.
package catalyst

import (
	"sort"
	"time"

	"github.com/seenimoa/catalystiv/pkg/models"
	"github.com/seenimoa/catalystiv/pkg/utils"
)

// Default windows, in calendar days relative to the catalyst.
const (
	DefaultDaysBefore   = 7
	DefaultDaysAfter    = 3
	DefaultPostMinDays  = 1
	DefaultPostMaxDays  = 14
	combineDaysBefore   = 5
	combineDaysAfter    = 7
	unknownCatalystName = "Unknown"
)

// FilterByProximity keeps the expirations falling within
// [catalyst-daysBefore, catalyst+daysAfter], bounds included, in input order.
func FilterByProximity(expirations []string, catalyst time.Time, daysBefore, daysAfter int) []string {
	out := make([]string, 0)
	for _, exp := range expirations {
		d, ok := utils.ParseDate(exp)
		if !ok {
			continue
		}
		diff := utils.DaysBetween(catalyst, d)
		if -daysBefore <= diff && diff <= daysAfter {
			out = append(out, exp)
		}
	}
	return out
}

// NearestPostCatalystExpiration returns the expiration closest after the
// catalyst within [minDaysAfter, maxDaysAfter]. The first one seen wins ties.
func NearestPostCatalystExpiration(expirations []string, catalyst time.Time, minDaysAfter, maxDaysAfter int) (string, bool) {
	best, bestDiff, found := "", 0, false
	for _, exp := range expirations {
		d, ok := utils.ParseDate(exp)
		if !ok {
			continue
		}
		diff := utils.DaysBetween(catalyst, d)
		if diff < minDaysAfter || diff > maxDaysAfter {
			continue
		}
		if !found || diff < bestDiff {
			best, bestDiff, found = exp, diff, true
		}
	}
	return best, found
}

// FieldMapping names the catalyst fields holding the event date and name.
type FieldMapping struct {
	DateField string
	NameField string
}

// DefaultFieldMapping reads the "date" and "name" fields.
var DefaultFieldMapping = FieldMapping{DateField: "date", NameField: "name"}

// CombineWithOptions pairs every dated catalyst with the expirations around
// it: a -5/+7 day proximity window and the nearest post-catalyst expiration.
// Catalysts with neither are dropped. Results are ordered by days to catalyst.
func CombineWithOptions(expirations []string, catalysts []models.CatalystEvent, fields FieldMapping) []models.CatalystExpirations {
	if fields.DateField == "" {
		fields.DateField = DefaultFieldMapping.DateField
	}
	if fields.NameField == "" {
		fields.NameField = DefaultFieldMapping.NameField
	}

	out := make([]models.CatalystExpirations, 0)
	for _, c := range catalysts {
		date, ok := utils.ParseDate(c.Lookup(fields.DateField))
		if !ok {
			continue
		}

		relevant := FilterByProximity(expirations, date, combineDaysBefore, combineDaysAfter)
		nearest, hasNearest := NearestPostCatalystExpiration(expirations, date, DefaultPostMinDays, DefaultPostMaxDays)
		if len(relevant) == 0 && !hasNearest {
			continue
		}

		name := c.Lookup(fields.NameField)
		if name == "" {
			name = unknownCatalystName
		}
		typ := c.Type
		if typ == "" {
			typ = models.CatalystOther
		}

		out = append(out, models.CatalystExpirations{
			CatalystDate:                  utils.FormatDate(date),
			CatalystName:                  name,
			CatalystType:                  typ,
			RelevantExpirations:           relevant,
			NearestPostCatalystExpiration: nearest,
			DaysToCatalyst:                utils.DaysUntil(date),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysToCatalyst < out[j].DaysToCatalyst
	})
	return out
}
