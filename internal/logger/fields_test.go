package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNamedFields(t *testing.T) {
	tests := []struct {
		name  string
		field zap.Field
		key   string
		value string
	}{
		{name: "provider", field: Provider(" gemini "), key: FieldProvider, value: "gemini"},
		{name: "model", field: Model("gemini-2.5-flash"), key: FieldModel, value: "gemini-2.5-flash"},
		{name: "bucket", field: Bucket("Soft Skills"), key: FieldBucket, value: "Soft Skills"},
		{name: "component", field: Component("cache\n"), key: FieldComponent, value: "cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field.Key != tt.key || tt.field.String != tt.value {
				t.Fatalf("unexpected field: %+v", tt.field)
			}
		})
	}

	if Bucket("  ").Type != zapcore.SkipType {
		t.Fatalf("expected a blank bucket to be skipped")
	}
}

func TestWithFieldsDropsBlankContext(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithFields(zap.New(core), Bucket("Technical"), Model(""), Component("comparator")).Info("bucket compared")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := len(entries[0].Context); got != 2 {
		t.Fatalf("expected 2 context fields, got %d: %+v", got, entries[0].Context)
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldBucket] != "Technical" || ctx[FieldComponent] != "comparator" {
		t.Fatalf("unexpected context: %v", ctx)
	}
	if _, ok := ctx[FieldModel]; ok {
		t.Fatalf("blank model must not be logged")
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	if WithFields(nil, Bucket("Other")) == nil {
		t.Fatalf("expected a no-op logger")
	}
	if WithCommonFields(nil, "openai", "") == nil {
		t.Fatalf("expected a no-op logger")
	}
}

func TestWithComponentAndBucket(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	log := WithComponent(zap.New(core), "embedding")
	log.With(Bucket("Languages")).Debug("comparing skill lists with fallback vectors")
	log.Debug("embedding cache flushed")

	tagged := observed.FilterField(zap.String(FieldComponent, "embedding")).All()
	if len(tagged) != 2 {
		t.Fatalf("expected every entry to carry the component, got %d", len(tagged))
	}

	withBucket := observed.FilterField(zap.String(FieldBucket, "Languages")).All()
	if len(withBucket) != 1 || withBucket[0].Message != "comparing skill lists with fallback vectors" {
		t.Fatalf("expected only the first entry to carry the bucket, got %+v", withBucket)
	}
}

func TestWithCommonFieldsSkipsUnknownModel(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "openai", "  ").Info("judgment received")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "openai" {
		t.Fatalf("expected provider openai, got %v", ctx[FieldProvider])
	}
	if _, ok := ctx[FieldModel]; ok {
		t.Fatalf("blank model must not be logged")
	}
}

func TestNewBuildsLoggerForEveryMode(t *testing.T) {
	for _, tc := range []struct{ json, debug bool }{{false, false}, {true, false}, {false, true}, {true, true}} {
		l, err := New(tc.json, tc.debug)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", tc, err)
		}
		if got := l.Core().Enabled(zapcore.DebugLevel); got != tc.debug {
			t.Fatalf("debug enabled = %v, want %v", got, tc.debug)
		}
	}
}
