package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const clockSchema = `{
	"type": "object",
	"properties": {
		"timezone": {"type": "string"},
		"show_seconds": {"type": "boolean"},
		"brightness": {"type": "integer", "minimum": 0, "maximum": 100}
	},
	"additionalProperties": false
}`

func writeSchema(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, SchemaFile), []byte(content), 0644); err != nil {
		t.Fatalf("writing schema: %v", err)
	}
}

func TestValidateSettingsNoSchema(t *testing.T) {
	// Plugins without a schema accept anything
	err := ValidateSettings(t.TempDir(), "clock-simple", map[string]any{"whatever": 42})
	if err != nil {
		t.Fatalf("expected nil error without schema, got %v", err)
	}
}

func TestValidateSettingsPass(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, clockSchema)

	err := ValidateSettings(dir, "clock-simple", map[string]any{
		"timezone":     "America/New_York",
		"show_seconds": true,
		"brightness":   80,
	})
	if err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}
}

func TestValidateSettingsViolation(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, clockSchema)

	err := ValidateSettings(dir, "clock-simple", map[string]any{
		"show_seconds": "yes", // wrong type
	})

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if ce.Plugin != "clock-simple" {
		t.Fatalf("error carries wrong plugin id: %s", ce.Plugin)
	}
}

func TestValidateSettingsMalformedSchema(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, `{"type":`)

	var ce *ConfigurationError
	if err := ValidateSettings(dir, "clock-simple", nil); !errors.As(err, &ce) {
		t.Fatalf("expected ConfigurationError for malformed schema, got %v", err)
	}
}
