package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"findar-backend/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	PushNotificationEventType    = "PushNotificationEvent"
	PushNotificationEventVersion = "1.0.0"
)

// Registry holds compiled schemas keyed by "<EventType>/<version>".
type Registry struct {
	schemas map[string]*jsonschema.Schema
}

// LoadRegistry compiles every events/**/*.json file of fsys.
func LoadRegistry(fsys fs.FS) (*Registry, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	err := fs.WalkDir(fsys, "events", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := compiler.AddResource(path, f); err != nil {
			return fmt.Errorf("add schema %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load schemas: %w", err)
	}

	r := &Registry{schemas: make(map[string]*jsonschema.Schema, len(paths))}
	for _, path := range paths {
		key, ok := eventKeyFromPath(path)
		if !ok {
			return nil, fmt.Errorf("schema path %s does not match events/<name>/v<major>.json", path)
		}
		schema, err := compiler.Compile(path)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		r.schemas[key] = schema
	}
	return r, nil
}

// Validate checks body against the schema registered for the event type and version.
func (r *Registry) Validate(eventType, eventVersion string, body []byte) error {
	schema, ok := r.schemas[eventType+"/"+eventVersion]
	if !ok {
		return fmt.Errorf("schema for event '%s' version '%s' not found", eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// ValidateEvent validates against the schemas embedded in the binary.
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = LoadRegistry(schemas.SchemasFS)
	})
	if defaultErr != nil {
		return defaultErr
	}
	return defaultRegistry.Validate(eventType, eventVersion, body)
}

// eventKeyFromPath turns "events/push-notification/v1.json" into "PushNotificationEvent/1.0.0".
func eventKeyFromPath(path string) (string, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "events/"), ".json")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 || !strings.HasPrefix(parts[1], "v") {
		return "", false
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, word := range strings.Split(parts[0], "-") {
		name.WriteString(caser.String(word))
	}
	name.WriteString("Event")

	return fmt.Sprintf("%s/%s.0.0", name.String(), strings.TrimPrefix(parts[1], "v")), true
}
