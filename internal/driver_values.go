package internal

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Coercions from raw driver values (pgx Values(), database/sql Scan into any)
// to the three column getters. nil reads as the zero value.

func driverString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case [16]byte, uuid.UUID, *uuid.UUID:
		u, ok := toUUID(x)
		if !ok {
			return "", nil
		}
		return u.String(), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), nil
	case pgtype.Numeric:
		if !x.Valid {
			return "", nil
		}
		dv, err := x.Value()
		if err != nil {
			return "", err
		}
		return dv.(string), nil
	case fmt.Stringer:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("cannot read %T as text", v)
	}
}

func driverInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case time.Time:
		return x.UnixMilli(), nil
	case pgtype.Numeric:
		n, err := x.Int64Value()
		if err != nil {
			return 0, err
		}
		return n.Int64, nil
	case string:
		return parseInt64(x)
	case []byte:
		return parseInt64(string(x))
	default:
		return 0, fmt.Errorf("cannot read %T as integer", v)
	}
}

func driverFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil {
			return 0, err
		}
		return f.Float64, nil
	case string:
		return parseFloat64(x)
	case []byte:
		return parseFloat64(string(x))
	}
	n, err := driverInt64(v)
	if err != nil {
		return 0, fmt.Errorf("cannot read %T as float", v)
	}
	return float64(n), nil
}

func parseInt64(s string) (int64, error) {
	switch n := tryParseNumber(s).(type) {
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot parse %q as integer", s)
}

func parseFloat64(s string) (float64, error) {
	switch n := tryParseNumber(s).(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("cannot parse %q as float", s)
}
