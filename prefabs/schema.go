package prefabs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const catalogSchemaFile = "pickups.schema.json"

var (
	catalogSchemaOnce sync.Once
	catalogSchema     *jsonschema.Schema
	catalogSchemaErr  error
)

func compiledCatalogSchema() (*jsonschema.Schema, error) {
	catalogSchemaOnce.Do(func() {
		raw, err := PrefabsFS.ReadFile(catalogSchemaFile)
		if err != nil {
			catalogSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(catalogSchemaFile, bytes.NewReader(raw)); err != nil {
			catalogSchemaErr = err
			return
		}
		catalogSchema, catalogSchemaErr = compiler.Compile(catalogSchemaFile)
	})
	return catalogSchema, catalogSchemaErr
}

// ValidateCatalog checks a decoded catalog document against the embedded
// JSON schema. The document is normalised through JSON first so YAML scalar
// types line up with what the validator expects.
func ValidateCatalog(doc any) error {
	schema, err := compiledCatalogSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	var normalised any
	if err := json.Unmarshal(raw, &normalised); err != nil {
		return fmt.Errorf("normalise: %w", err)
	}
	if err := schema.Validate(normalised); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}
