package domain

import "time"

// KST is the fixed operating timezone (UTC+9). Korea observes no DST,
// so a fixed offset keeps week math independent of the host timezone
// database.
var KST = time.FixedZone("Asia/Seoul", 9*60*60)

// StartOfWeek returns Monday 00:00:00 KST of the Mon-Sun week
// containing t. Sunday belongs to the week that started the previous
// Monday.
func StartOfWeek(t time.Time) time.Time {
	t = t.In(KST)
	back := int(t.Weekday()) - int(time.Monday)
	if t.Weekday() == time.Sunday {
		back = 6
	}
	y, m, d := t.AddDate(0, 0, -back).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, KST)
}

// StartOfNextWeek returns Monday 00:00:00 KST of the week after the
// one containing t.
func StartOfNextWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7)
}

// EndOfWeek returns Friday 23:59:59.999 KST of the week beginning at
// weekMonday.
func EndOfWeek(weekMonday time.Time) time.Time {
	y, m, d := weekMonday.In(KST).AddDate(0, 0, 4).Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), KST)
}
