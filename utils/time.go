package utils

import "time"

// JST is the fixed timezone all member-card timestamps are recorded in.
var JST = time.FixedZone("JST", 9*60*60)

const (
	// TimestampLayout is the createdTime/updatedTime format.
	TimestampLayout = "2006/01/02 15:04:05"
	// DateLayout is the pointExpirationDate format.
	DateLayout = "2006/01/02"
)

// NowJST returns the current time in JST.
func NowJST() time.Time {
	return time.Now().In(JST)
}

// Timestamp formats t as a member-card timestamp string.
func Timestamp(t time.Time) string {
	return t.In(JST).Format(TimestampLayout)
}
