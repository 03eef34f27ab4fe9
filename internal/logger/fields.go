package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Keys shared by log lines across packages.
const (
	FieldSearchID = "search_id"
	FieldSource   = "source"
	FieldTier     = "tier"
	FieldProvider = "provider"
)

// Strings turns alternating key/value pairs into zap fields. Pairs with a
// blank key or value are dropped, as is a trailing key without a value.
func Strings(kv ...string) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, value := strings.TrimSpace(kv[i]), strings.TrimSpace(kv[i+1])
		if key == "" || value == "" {
			continue
		}
		fields = append(fields, zap.String(key, value))
	}
	return fields
}

// Scoped returns l with fields attached. A nil l yields a no-op logger.
func Scoped(l *zap.Logger, fields ...zap.Field) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func WithSearchFields(l *zap.Logger, searchID, source string) *zap.Logger {
	return Scoped(l, Strings(FieldSearchID, searchID, FieldSource, source)...)
}

// WithProviderFields scopes l to one provider call within a tier.
func WithProviderFields(l *zap.Logger, tier, provider string) *zap.Logger {
	return Scoped(l, Strings(FieldProvider, provider, FieldTier, tier)...)
}
