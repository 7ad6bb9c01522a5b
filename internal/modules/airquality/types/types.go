package types

import "time"

// TimestampLayout renders reading times the way the store prints them.
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is one PM2.5 air quality sample.
type Reading struct {
	Time  time.Time `db:"ts_created" json:"time"`
	Value int       `db:"aqi" json:"value"`
}

// Timestamp formats the reading time in its own zone.
func (r Reading) Timestamp() string {
	return r.Time.Format(TimestampLayout)
}
