package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/balkashynov/worktrack/internal/models"
)

var (
	slashDateRegex   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	relativeAgoRegex = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks)\s+ago$`)
)

// ParseWorkDate parses the date formats accepted on the command line.
// Supported formats:
// - yyyy-mm-dd (e.g., "2025-01-10")
// - dd/mm/yyyy (e.g., "10/01/2025")
// - "today", "yesterday"
// - X days ago / X weeks ago (e.g., "3 days ago", "1 week ago")
func ParseWorkDate(input string, now time.Time) (models.Date, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return models.Date{}, fmt.Errorf("date is empty")
	}

	today := models.DateOf(now)
	switch input {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}

	if d, err := models.ParseDate(input); err == nil {
		return d, nil
	}

	// Try dd/mm/yyyy
	if d, err := parseSlashDate(input); err == nil {
		return d, nil
	}

	// Try relative formats
	if d, err := parseRelativeAgo(input, today); err == nil {
		return d, nil
	}

	return models.Date{}, fmt.Errorf("invalid date %q. Use: yyyy-mm-dd, dd/mm/yyyy, today, yesterday, X days ago or X weeks ago", input)
}

// parseSlashDate parses dd/mm/yyyy
func parseSlashDate(input string) (models.Date, error) {
	matches := slashDateRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return models.Date{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])

	if month < 1 || month > 12 {
		return models.Date{}, fmt.Errorf("month must be between 1 and 12")
	}

	d := models.NewDate(year, time.Month(month), day)
	// Rejects 31/02 and friends
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return models.Date{}, fmt.Errorf("invalid date")
	}
	return d, nil
}

// parseRelativeAgo parses "X days ago" and "X weeks ago"
func parseRelativeAgo(input string, today models.Date) (models.Date, error) {
	matches := relativeAgoRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return models.Date{}, fmt.Errorf("invalid relative date format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid number")
	}

	switch matches[2] {
	case "day", "days":
		if amount > 3650 {
			return models.Date{}, fmt.Errorf("days must be at most 3650")
		}
		return today.AddDays(-amount), nil
	case "week", "weeks":
		if amount > 520 {
			return models.Date{}, fmt.Errorf("weeks must be at most 520")
		}
		return today.AddDays(-7 * amount), nil
	default:
		return models.Date{}, fmt.Errorf("unsupported time unit")
	}
}

// FormatWorkDate renders a date for tables, relative when recent
func FormatWorkDate(d models.Date, now time.Time) string {
	daysAgo := int(models.DateOf(now).Sub(d.Time).Hours() / 24)
	dateStr := d.Format("Mon 02/01/2006")

	switch {
	case daysAgo == 0:
		return fmt.Sprintf("today (%s)", dateStr)
	case daysAgo == 1:
		return fmt.Sprintf("yesterday (%s)", dateStr)
	case daysAgo > 1 && daysAgo <= 7:
		return fmt.Sprintf("%s (%d days ago)", dateStr, daysAgo)
	default:
		return dateStr
	}
}
