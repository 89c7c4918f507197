package reviews

import "fmt"

// RelativeTime renders the Danish relative age of a review using fixed day
// boundaries: same day, yesterday, days under a week, weeks under a month,
// months under a year, then years. Quotients round down and use the
// singular form at exactly one.
func RelativeTime(ageDays int) string {
	switch {
	case ageDays <= 0:
		return "i dag"
	case ageDays == 1:
		return "i går"
	case ageDays < 7:
		return fmt.Sprintf("for %d dage siden", ageDays)
	case ageDays < 30:
		return plural(ageDays/7, "uge", "uger")
	case ageDays < 365:
		return plural(ageDays/30, "måned", "måneder")
	default:
		return plural(ageDays/365, "år", "år")
	}
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return fmt.Sprintf("for 1 %s siden", singular)
	}
	return fmt.Sprintf("for %d %s siden", n, pluralForm)
}
