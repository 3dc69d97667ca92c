package grafana

import (
	"strings"
	"time"
)

// logTimeLayout is the timestamp format the track loggers write.
const logTimeLayout = "2006-01-02 15:04:05.000"

// kst is the fixed zone the Grafana instance is configured for.
var kst = time.FixedZone("KST", 9*60*60)

// ToUTCISO8601 converts a log timestamp to a UTC ISO-8601 string with
// millisecond precision ("2024-05-01T09:00:00.000Z").
func ToUTCISO8601(ts string) (string, error) {
	t, err := time.Parse(logTimeLayout, ts)
	if err != nil {
		return "", err
	}
	t = t.UTC()
	out := t.Format("2006-01-02T15:04:05.000Z07:00")
	return strings.Replace(out, "+00:00", "Z", 1), nil
}

// ToKSTISO8601 converts a log timestamp to a KST (UTC+9) ISO-8601 string
// with millisecond precision ("2024-05-01T09:00:00.000+09:00"). Log
// timestamps are wall-clock KST already; only the zone designator is added.
func ToKSTISO8601(ts string) (string, error) {
	t, err := time.ParseInLocation(logTimeLayout, ts, kst)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02T15:04:05.000Z07:00"), nil
}
