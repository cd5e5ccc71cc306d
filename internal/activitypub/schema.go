package activitypub

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Schema names.
const (
	schemaWebFinger  = "webfinger.json"
	schemaProfile    = "profile.json"
	schemaCollection = "collection.json"
)

// schemas checks generated documents before they are written.
type schemas map[string]*jsonschema.Schema

func compileSchemas() (schemas, error) {
	out := schemas{}
	for _, name := range []string{schemaWebFinger, schemaProfile, schemaCollection} {
		data, err := schemaFiles.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		s, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = s
	}
	return out, nil
}

// check validates encoded against the named schema.
func (s schemas) check(name string, encoded []byte) error {
	schema, ok := s[name]
	if !ok {
		return fmt.Errorf("unknown schema %s", name)
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return err
	}
	return schema.Validate(doc)
}
