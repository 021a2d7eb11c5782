package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tokens is the canonical form of list attributes such as sizes and colors.
//
// Rows written before the list was normalized hold one of three shapes: a
// JSON array (`["S","M"]`), a JSON string wrapping an array (`"[\"S\",\"M\"]"`),
// or a comma separated string (`S, M` or the python repr `['S', 'M']`).
// Scan accepts all of them; Value always writes a JSON array.
type Tokens []string

// ParseTokens normalizes any stored representation into Tokens.
func ParseTokens(raw string) Tokens {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Tokens{}
	}

	switch raw[0] {
	case '[':
		var items []any
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return fromAny(items)
		}
	case '"':
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err == nil {
			return ParseTokens(inner)
		}
	}

	return clean(strings.Split(raw, ","))
}

func fromAny(items []any) Tokens {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return clean(out)
}

// clean trims quoting left over from legacy encodings, drops blanks and
// case-insensitive duplicates, and keeps first-seen order.
func clean(parts []string) Tokens {
	out := make(Tokens, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `[]'" `)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Contains reports whether token is a member, ignoring case and surrounding space.
func (t Tokens) Contains(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	for _, v := range t {
		if strings.EqualFold(v, token) {
			return true
		}
	}
	return false
}

// Scan implements sql.Scanner.
func (t *Tokens) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Tokens{}
	case []byte:
		*t = ParseTokens(string(v))
	case string:
		*t = ParseTokens(v)
	default:
		return fmt.Errorf("catalog: cannot scan %T into Tokens", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (t Tokens) Value() (driver.Value, error) {
	b, err := json.Marshal(clean(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t Tokens) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// UnmarshalJSON accepts a list or any string form understood by ParseTokens.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*t = Tokens{}
	case strings.HasPrefix(trimmed, "["):
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*t = fromAny(items)
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTokens(s)
	default:
		return fmt.Errorf("catalog: unsupported token list %s", trimmed)
	}
	return nil
}
