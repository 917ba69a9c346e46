package fieldmap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	// KindText renders the value as-is.
	KindText Kind = "text"
	// KindList joins array elements with commas.
	KindList Kind = "list"
	// KindEpochMillisDate renders milliseconds since the unix epoch as YYYY-MM-DD.
	KindEpochMillisDate Kind = "epoch_millis_date"
)

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindList, KindEpochMillisDate:
		return true
	}
	return false
}

const dateLayout = "2006-01-02"

// Normalize renders a resolved value as text according to kind, absent values
// render as the empty string. loc is only used by KindEpochMillisDate.
func Normalize(kind Kind, value any, loc *time.Location) string {
	switch kind {
	case KindList:
		return normalizeList(value)
	case KindEpochMillisDate:
		return normalizeDate(value, loc)
	}
	return Text(value)
}

// Text renders a single value: strings as-is, numbers as written in the source,
// booleans as true/false, objects and arrays as compact JSON.
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case map[string]any, []any:
		out, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(out)
	}
	return fmt.Sprint(value)
}

func normalizeList(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = Text(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	}
	return Text(value)
}

// the range of timestamps that format as a four digit year in every zone
var (
	minEpochMillis = time.Date(0, time.January, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxEpochMillis = time.Date(9999, time.December, 30, 0, 0, 0, 0, time.UTC).UnixMilli()
)

func millisInRange(ms int64) (int64, bool) {
	if ms < minEpochMillis || ms > maxEpochMillis {
		return 0, false
	}
	return ms, true
}

func floatMillis(f float64) (int64, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f < float64(minEpochMillis) || f > float64(maxEpochMillis) {
		return 0, false
	}
	return int64(f), true
}

func epochMillis(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		i, err := v.Int64()
		if err == nil {
			return millisInRange(i)
		}
		f, err := v.Float64()
		if err == nil {
			return floatMillis(f)
		}
	case float64:
		return floatMillis(v)
	case int:
		return millisInRange(int64(v))
	case int64:
		return millisInRange(v)
	case string:
		s := strings.TrimSpace(v)
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return millisInRange(i)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			return floatMillis(f)
		}
	}
	return 0, false
}

// zero, absent and unparseable timestamps render as the empty string
func normalizeDate(value any, loc *time.Location) string {
	ms, ok := epochMillis(value)
	if !ok || ms == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format(dateLayout)
}
