package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStrings(t *testing.T) {
	fields := Strings(" source ", " remotive ", "blank", "  ", "", "no key", "dangling")

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "source" || fields[0].String != "remotive" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}
	if empty := Strings(); len(empty) != 0 {
		t.Fatalf("expected no fields, got %d", len(empty))
	}
}

func TestScopedNilLogger(t *testing.T) {
	if Scoped(nil, zap.String("a", "b")) == nil {
		t.Fatalf("expected no-op logger for nil input")
	}

	l := zap.NewNop()
	if Scoped(l) != l {
		t.Fatalf("expected the same logger without fields")
	}
}

func TestWithSearchFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithSearchFields(zap.New(core), "3f1c", "arbeitnow").Info("fetched")
	WithSearchFields(zap.New(core), "3f1c", "").Info("ranked")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0].ContextMap()
	if first[FieldSearchID] != "3f1c" || first[FieldSource] != "arbeitnow" {
		t.Fatalf("unexpected fields: %v", first)
	}
	if _, ok := entries[1].ContextMap()[FieldSource]; ok {
		t.Fatalf("expected empty source to be omitted, got %v", entries[1].ContextMap())
	}
}

func TestWithProviderFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	WithProviderFields(zap.New(core), "free", "remotive").Debug("provider returned postings")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "remotive" || ctx[FieldTier] != "free" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
}
