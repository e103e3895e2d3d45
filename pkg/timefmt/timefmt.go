package timefmt

import "time"

// Layout is the timestamp format the NMS platform exchanges for expiry fields
// and the format subscription rows store in expires/last_updated columns.
// Always UTC, second precision, no timezone suffix.
const Layout = "2006-01-02 15:04:05"

// Format renders t in the storage layout, truncated to seconds in UTC.
func Format(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(Layout)
}

// Parse reads a storage-layout timestamp. The layout carries no zone, so the
// result is interpreted as UTC.
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}
