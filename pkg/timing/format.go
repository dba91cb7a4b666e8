package timing

import (
	"fmt"
	"math"
	"time"

	"github.com/psantana5/ct/internal/logging"
)

const (
	microsPerSecond = int64(1e6)
	microsPerDay    = 86400 * microsPerSecond

	// MaxDays bounds the day count in either direction, like a Python
	// timedelta.
	MaxDays = 999999999
)

// SecondsToStr renders the current local time as "YYYY-MM-DD HH:MM:SS" when
// called without arguments. Given a duration in seconds it renders it as
// H:MM:SS, adding .ffffff for a non-zero fraction and a "N days, " prefix
// for durations of a day or more. Only the first argument is used.
//
// It panics on NaN, infinities and durations beyond MaxDays days.
func SecondsToStr(elapsed ...float64) string {
	if len(elapsed) == 0 {
		return Timestamp(time.Now())
	}
	sec := elapsed[0]
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		panic(fmt.Sprintf("timing: cannot render %v seconds", sec))
	}

	days := math.Floor(sec / 86400)
	rem := math.RoundToEven((sec - days*86400) * float64(microsPerSecond))
	if rem >= float64(microsPerDay) {
		days++
		rem -= float64(microsPerDay)
	} else if rem < 0 {
		days--
		rem += float64(microsPerDay)
	}
	if days < -MaxDays || days > MaxDays {
		panic(fmt.Sprintf("timing: %v seconds is out of range (more than %d days)", sec, MaxDays))
	}
	return formatDelta(int64(days), int64(rem))
}

// FormatElapsed renders d the same way SecondsToStr renders seconds,
// rounding half to even at the microsecond.
func FormatElapsed(d time.Duration) string {
	us := roundMicros(d)
	days := us / microsPerDay
	rem := us % microsPerDay
	if rem < 0 {
		rem += microsPerDay
		days--
	}
	return formatDelta(days, rem)
}

// Timestamp renders t in local time as "YYYY-MM-DD HH:MM:SS".
func Timestamp(t time.Time) string {
	return t.Local().Format(logging.TimestampLayout)
}

func roundMicros(d time.Duration) int64 {
	q := int64(d) / 1000
	r := int64(d) % 1000
	if r < 0 {
		r += 1000
		q--
	}
	if r > 500 || (r == 500 && q&1 != 0) {
		q++
	}
	return q
}

// formatDelta normalises like a calendar delta: days carry the sign and the
// clock part, 0 <= us < one day, is always positive, so -1s is
// "-1 day, 23:59:59".
func formatDelta(days, us int64) string {
	secs := us / microsPerSecond
	micros := us % microsPerSecond

	out := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	if micros != 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	if days != 0 {
		unit := "days"
		if days == 1 || days == -1 {
			unit = "day"
		}
		out = fmt.Sprintf("%d %s, %s", days, unit, out)
	}
	return out
}
