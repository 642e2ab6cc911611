package internal

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func tryParseNumber(s string) any {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// quoteColumn quotes a single column name; dots stay part of the name.
func quoteColumn(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// sanitizeIdentifier quotes a possibly schema-qualified identifier.
func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.Trim(part, " \"")
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}
	if len(clean) == 0 {
		clean = []string{name}
	}
	return pgx.Identifier(clean).Sanitize()
}

// toUUID recognises the binary UUID forms drivers hand back.
func toUUID(obj any) (uuid.UUID, bool) {
	switch v := obj.(type) {
	case uuid.UUID:
		return v, true
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, false
		}
		return *v, true
	case [16]byte:
		return uuid.UUID(v), true
	default:
		return uuid.Nil, false
	}
}
