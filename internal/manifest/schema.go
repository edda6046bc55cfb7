package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	// SchemaFile is the optional per-plugin configuration schema,
	// shipped next to plugin.json. It drives the generic settings UI
	// and validates the host config block for this plugin.
	SchemaFile = "config.schema.json"
)

// ConfigurationError reports plugin settings that violate the
// plugin's declared configuration schema.
type ConfigurationError struct {
	Plugin string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration for plugin '%s' violates its schema: %v", e.Plugin, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidateSettings checks a plugin's settings block against the
// config.schema.json in its directory. Plugins without a schema
// accept any settings.
func ValidateSettings(pluginDir, pluginID string, settings map[string]any) error {
	path := filepath.Join(pluginDir, SchemaFile)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config schema: %w", err)
	}
	defer f.Close()

	schemaDoc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return &ConfigurationError{Plugin: pluginID, Err: fmt.Errorf("malformed schema: %w", err)}
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(SchemaFile, schemaDoc); err != nil {
		return &ConfigurationError{Plugin: pluginID, Err: err}
	}
	schema, err := compiler.Compile(SchemaFile)
	if err != nil {
		return &ConfigurationError{Plugin: pluginID, Err: err}
	}

	// Round-trip the settings so programmatically-built maps decode
	// to the generic JSON types the validator expects.
	raw, err := json.Marshal(settings)
	if err != nil {
		return &ConfigurationError{Plugin: pluginID, Err: err}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ConfigurationError{Plugin: pluginID, Err: err}
	}

	if err := schema.Validate(instance); err != nil {
		return &ConfigurationError{Plugin: pluginID, Err: err}
	}

	return nil
}
