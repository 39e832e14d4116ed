package utils

import "time"

// China Standard Time, used for user-facing dates on share cards.
var cnLoc = func() *time.Location {
	if loc, err := time.LoadLocation("Asia/Shanghai"); err == nil {
		return loc
	}
	return time.FixedZone("CST", 8*3600)
}()

// FormatDateCN renders a date the way share cards show it, e.g. 2025/9/24.
func FormatDateCN(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(cnLoc).Format("2006/1/2")
}

func FormatRFC3339CN(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(cnLoc).Format(time.RFC3339)
}
