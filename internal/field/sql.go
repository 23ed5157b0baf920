package field

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tarachom/accountingstore/internal/ident"
)

// TimestampLayout is the fixed-width UTC layout timestamps are stored in.
// Text order equals chronological order.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// ToParam converts a Value to a database/sql parameter.
// Text is NFC normalized; references are stored as canonical JSON.
func ToParam(v Value) (any, error) {
	switch val := v.(type) {
	case nil, Null:
		return nil, nil
	case Text:
		return normalize(string(val)), nil
	case Number:
		return val.String(), nil
	case Timestamp:
		return FormatTimestamp(val.Time), nil
	case Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case Identity:
		return val.String(), nil
	case Ref:
		data, err := MarshalReference(val.Reference)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

// FromColumn converts a scanned column value back to a Value of the
// declared kind. NULL columns become Null.
func FromColumn(kind Kind, src any) (Value, error) {
	if src == nil {
		return Null{}, nil
	}
	switch kind {
	case KindText:
		s, err := asString(src)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	case KindNumber:
		switch n := src.(type) {
		case int64:
			return IntNumber(n), nil
		case float64:
			return NewNumber(strconv.FormatFloat(n, 'f', -1, 64))
		default:
			s, err := asString(src)
			if err != nil {
				return nil, err
			}
			return NewNumber(s)
		}
	case KindTimestamp:
		switch t := src.(type) {
		case time.Time:
			return At(t), nil
		default:
			s, err := asString(src)
			if err != nil {
				return nil, err
			}
			return ParseTimestamp(s)
		}
	case KindBool:
		switch b := src.(type) {
		case int64:
			return Bool(b != 0), nil
		case bool:
			return Bool(b), nil
		default:
			s, err := asString(src)
			if err != nil {
				return nil, err
			}
			parsed, err := strconv.ParseBool(s)
			if err != nil {
				return nil, fmt.Errorf("parse bool %q: %w", s, err)
			}
			return Bool(parsed), nil
		}
	case KindIdentity:
		s, err := asString(src)
		if err != nil {
			return nil, err
		}
		id, err := ident.Parse(s)
		if err != nil {
			return nil, err
		}
		return ID(id), nil
	case KindReference:
		s, err := asString(src)
		if err != nil {
			return nil, err
		}
		ref, err := UnmarshalReference([]byte(s))
		if err != nil {
			return nil, err
		}
		return Reference(ref), nil
	default:
		return nil, fmt.Errorf("unsupported column kind %q", kind)
	}
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout and RFC 3339.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return At(t), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return At(t), nil
}

func asString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported column type %T", src)
	}
}
