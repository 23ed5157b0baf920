package field

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/tarachom/accountingstore/internal/ident"
)

// MarshalCanonical renders a row as canonical JSON: keys sorted by UTF-16
// code units, no HTML escaping, NFC-normalized strings. Identical rows
// always produce identical bytes.
func MarshalCanonical(r Row) ([]byte, error) {
	keys := r.Names()
	slices.SortFunc(keys, compareKeysUTF16)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		v, _ := r.Get(k)
		valBytes, err := marshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler using the canonical encoding.
func (r Row) MarshalJSON() ([]byte, error) {
	return MarshalCanonical(r)
}

// MarshalReference encodes a reference for storage. The cached
// presentation is not part of the encoding.
func MarshalReference(ref ident.Reference) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	idBytes, _ := marshalCanonicalString(ref.ID.String())
	buf.Write(idBytes)
	buf.WriteString(`,"kind":`)
	kindBytes, _ := marshalCanonicalString(string(ref.Kind))
	buf.Write(kindBytes)
	if ref.Kind == ident.RefText {
		buf.WriteString(`,"text":`)
	} else {
		buf.WriteString(`,"table":`)
	}
	discBytes, err := marshalCanonicalString(ref.Discriminator())
	if err != nil {
		return nil, err
	}
	buf.Write(discBytes)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type storedReference struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Table string `json:"table"`
	Text  string `json:"text"`
}

// UnmarshalReference decodes a reference written by MarshalReference.
func UnmarshalReference(data []byte) (ident.Reference, error) {
	var raw storedReference
	if err := json.Unmarshal(data, &raw); err != nil {
		return ident.Reference{}, fmt.Errorf("unmarshal reference: %w", err)
	}
	id, err := ident.Parse(raw.ID)
	if err != nil {
		return ident.Reference{}, fmt.Errorf("unmarshal reference: %w", err)
	}
	ref := ident.Reference{Kind: ident.RefKind(raw.Kind), ID: id, Table: raw.Table, Text: raw.Text}
	if err := ref.Validate(); err != nil {
		return ident.Reference{}, fmt.Errorf("unmarshal reference: %w", err)
	}
	return ref, nil
}

func marshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Text:
		return marshalCanonicalString(string(val))
	case Number:
		return []byte(val.String()), nil
	case Timestamp:
		return marshalCanonicalString(val.Format(time.RFC3339Nano))
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Identity:
		return marshalCanonicalString(val.String())
	case Ref:
		return MarshalReference(val.Reference)
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

// marshalCanonicalString produces a JSON string with NFC normalization and
// without HTML escaping. U+2028 and U+2029 are emitted literally.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalize(s)); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns \u2028 and \u2029 escapes back into literal
// characters, leaving \\u2028 (an escaped backslash followed by text) alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') && trailingBackslashes(out)%2 == 0 {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func trailingBackslashes(b []byte) int {
	n := 0
	for j := len(b) - 1; j >= 0 && b[j] == '\\'; j-- {
		n++
	}
	return n
}

// compareKeysUTF16 orders keys by UTF-16 code units.
// Go's default string comparison uses UTF-8, which orders differently for
// characters outside the BMP.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
