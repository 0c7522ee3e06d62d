package timeval

import "time"

const usecPerSec = 1000000

// Timeval is an absolute point in time at microsecond resolution, laid out the
// same way as the C struct timeval.
type Timeval struct {
	Sec  int64
	Usec int64
}

func FromTime(t time.Time) Timeval {
	return Timeval{Sec: t.Unix(), Usec: int64(t.Nanosecond() / 1000)}
}

func (tv Timeval) Time() time.Time {
	n := tv.Normalize()
	return time.Unix(n.Sec, n.Usec*1000)
}

// Normalize folds microseconds outside of [0, 1000000) into the seconds field.
func (tv Timeval) Normalize() Timeval {
	if tv.Usec >= usecPerSec || tv.Usec < 0 {
		tv.Sec += tv.Usec / usecPerSec
		tv.Usec %= usecPerSec
		if tv.Usec < 0 {
			tv.Sec--
			tv.Usec += usecPerSec
		}
	}

	return tv
}

// Before reports whether tv is strictly earlier than other.
func (tv Timeval) Before(other Timeval) bool {
	a, b := tv.Normalize(), other.Normalize()
	if a.Sec != b.Sec {
		return a.Sec < b.Sec
	}

	return a.Usec < b.Usec
}

// Sub returns the elapsed time from earlier to tv, borrowing a second when the
// microsecond field would go negative. ok is false if earlier is after tv;
// the result is never allowed to wrap.
func (tv Timeval) Sub(earlier Timeval) (elapsed Timeval, ok bool) {
	cur, boot := tv.Normalize(), earlier.Normalize()

	if cur.Before(boot) {
		return Timeval{}, false
	}

	if cur.Usec < boot.Usec {
		cur.Sec--
		elapsed.Usec = usecPerSec - boot.Usec + cur.Usec
	} else {
		elapsed.Usec = cur.Usec - boot.Usec
	}
	elapsed.Sec = cur.Sec - boot.Sec

	return elapsed, true
}

// Seconds combines both fields into a floating point number of seconds.
func (tv Timeval) Seconds() float64 {
	return float64(tv.Sec) + float64(tv.Usec)/usecPerSec
}

func (tv Timeval) Duration() time.Duration {
	return time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
}
