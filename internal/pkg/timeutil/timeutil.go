package timeutil

import "time"

func NowUnix() int64 {
	return time.Now().Unix()
}

// FormatUnix renders a unix-seconds timestamp as ISO-8601 in UTC.
func FormatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
