package timeutil

import "time"

func NowUnix() int64 {
	return time.Now().Unix()
}

// NowMillis is the clock used for attachment mtimes; millisecond precision
// keeps document keys distinct for saves landing within the same second.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
