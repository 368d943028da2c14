package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var (
	isoDurationRegexp = regexp.MustCompile(`^(-)?P(?:(\d+(?:\.\d+)?)W)?(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)
	clockRegexp       = regexp.MustCompile(`^(-)?(?:(\d+) days?, )?(\d+):(\d{2}):(\d{2}(?:\.\d+)?)$`)

	day  = 24 * time.Hour
	week = 7 * day

	// positional order for sequence constructors
	durationFields = []struct {
		key  string
		unit time.Duration
	}{
		{"days", day},
		{"seconds", time.Second},
		{"microseconds", time.Microsecond},
		{"milliseconds", time.Millisecond},
		{"minutes", time.Minute},
		{"hours", time.Hour},
		{"weeks", week},
	}

	dateTimeLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04:05Z0700",
		"2006-01-02 15:04:05Z0700",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ToDuration converts raw into a time.Duration. Numbers are seconds.
// Text may be ISO-8601 (P1DT2H), clock form ("1 day, 02:00:00"), a number
// of seconds or Go duration syntax. Sequences are positional
// (days, seconds, microseconds, milliseconds, minutes, hours, weeks) and
// maps use those names as keys.
func ToDuration(raw interface{}) (time.Duration, error) {
	switch x := raw.(type) {
	case time.Duration:
		return x, nil
	case string:
		d, err := parseDuration(strings.TrimSpace(x))
		if err != nil {
			return 0, coercionError(TypeDuration, raw, err)
		}
		return d, nil
	case map[string]interface{}:
		var total time.Duration
		for _, f := range durationFields {
			v, ok := x[f.key]
			if !ok {
				continue
			}
			n, err := cast.ToFloat64E(v)
			if err != nil {
				return 0, coercionError(TypeDuration, raw, err)
			}
			total += scale(n, f.unit)
		}
		return total, nil
	}
	if seq, ok := sequence(raw); ok {
		if len(seq) == 0 || len(seq) > len(durationFields) {
			return 0, coercionError(TypeDuration, raw, fmt.Errorf("expected 1 to %d positional values, got %d", len(durationFields), len(seq)))
		}
		var total time.Duration
		for i, v := range seq {
			n, err := cast.ToFloat64E(v)
			if err != nil {
				return 0, coercionError(TypeDuration, raw, err)
			}
			total += scale(n, durationFields[i].unit)
		}
		return total, nil
	}
	f, err := number(raw)
	if err != nil {
		return 0, coercionError(TypeDuration, raw, err)
	}
	return scale(f, time.Second), nil
}

func scale(n float64, unit time.Duration) time.Duration {
	return time.Duration(math.Round(n * float64(unit)))
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if m := isoDurationRegexp.FindStringSubmatch(s); m != nil && s != "P" && !strings.HasSuffix(s, "T") {
		var total time.Duration
		units := []time.Duration{week, day, time.Hour, time.Minute, time.Second}
		for i, g := range m[2:] {
			if g == "" {
				continue
			}
			n, _ := strconv.ParseFloat(g, 64)
			total += scale(n, units[i])
		}
		if m[1] == "-" {
			total = -total
		}
		return total, nil
	}
	if m := clockRegexp.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(m[2])
		hours, _ := strconv.Atoi(m[3])
		minutes, _ := strconv.Atoi(m[4])
		secs, _ := strconv.ParseFloat(m[5], 64)
		total := time.Duration(days)*day + time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute + scale(secs, time.Second)
		if m[1] == "-" {
			total = -total
		}
		return total, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return scale(n, time.Second), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

// FormatISODuration renders d in ISO-8601 form, e.g. P1DT2H3M4.5S.
func FormatISODuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	if d < 0 {
		return "-" + FormatISODuration(-d)
	}
	var b strings.Builder
	b.WriteString("P")
	if days := d / day; days > 0 {
		fmt.Fprintf(&b, "%dD", days)
		d -= days * day
	}
	if d == 0 {
		return b.String()
	}
	b.WriteString("T")
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
		d -= m * time.Minute
	}
	if d > 0 {
		secs := d / time.Second
		nanos := d % time.Second
		if nanos == 0 {
			fmt.Fprintf(&b, "%dS", secs)
		} else {
			frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
			fmt.Fprintf(&b, "%d.%sS", secs, frac)
		}
	}
	return b.String()
}

// ToDateTime converts raw into a UTC time.Time. Numbers are epoch seconds
// rounded to the microsecond. Text may be RFC 3339, "YYYY-MM-DD HH:MM[:SS]"
// with an optional zone, a bare date or an epoch number. Sequences are
// (year, month, day[, hour, minute, second, microsecond]) and maps use
// those names as keys. Values without a zone are taken as UTC.
func ToDateTime(raw interface{}) (time.Time, error) {
	switch x := raw.(type) {
	case time.Time:
		return x.UTC(), nil
	case *time.Time:
		if x == nil {
			return time.Time{}, coercionError(TypeDateTime, raw, fmt.Errorf("nil time"))
		}
		return x.UTC(), nil
	case string:
		t, err := parseDateTime(strings.TrimSpace(x))
		if err != nil {
			return time.Time{}, coercionError(TypeDateTime, raw, err)
		}
		return t, nil
	case map[string]interface{}:
		parts := make([]interface{}, 0, 7)
		for _, k := range []string{"year", "month", "day", "hour", "minute", "second", "microsecond"} {
			v, ok := x[k]
			if !ok {
				if len(parts) < 3 {
					return time.Time{}, coercionError(TypeDateTime, raw, fmt.Errorf("missing %s key", k))
				}
				v = 0
			}
			parts = append(parts, v)
		}
		return ToDateTime(parts)
	}
	if seq, ok := sequence(raw); ok {
		if len(seq) < 3 || len(seq) > 7 {
			return time.Time{}, coercionError(TypeDateTime, raw, fmt.Errorf("expected 3 to 7 positional values, got %d", len(seq)))
		}
		var f [7]int
		for i, v := range seq {
			n, err := cast.ToIntE(v)
			if err != nil {
				return time.Time{}, coercionError(TypeDateTime, raw, err)
			}
			f[i] = n
		}
		if f[1] < 1 || f[1] > 12 || f[2] < 1 || f[2] > 31 {
			return time.Time{}, coercionError(TypeDateTime, raw, fmt.Errorf("date out of range"))
		}
		return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], f[6]*1000, time.UTC), nil
	}
	f, err := number(raw)
	if err != nil {
		return time.Time{}, coercionError(TypeDateTime, raw, err)
	}
	return fromEpoch(f), nil
}

func fromEpoch(f float64) time.Time {
	sec := math.Floor(f)
	us := math.Round((f - sec) * 1e6)
	return time.Unix(int64(sec), int64(us)*int64(time.Microsecond)).UTC()
}

func parseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
