package review

import "time"

const dateLayout = "2006-01-02"

// LastWeek returns the five weekdays of the week before today's week and
// the Monday that starts it. Any day of a week maps to the same result.
func LastWeek(today time.Time) (days []string, monday string) {
	offset := (int(today.Weekday()) + 6) % 7
	runDate := today.AddDate(0, 0, -offset)

	days = make([]string, 5)
	for i := range days {
		days[i] = runDate.AddDate(0, 0, i-7).Format(dateLayout)
	}
	return days, days[0]
}

// SpreadsheetTitle names the spreadsheet of the week starting at monday.
func SpreadsheetTitle(monday string) string {
	return "Paper Review: " + monday
}
