package diff

import (
	"bytes"
	"encoding/json"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// nodeLinkSchema describes the node-link documents Decode accepts,
// including ones written by other tools.
const nodeLinkSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["nodes"],
  "definitions": {
    "color": {"enum": ["agree", "disagree", "test_only", "gold_only"]}
  },
  "properties": {
    "directed": {"type": "boolean"},
    "multigraph": {"type": "boolean"},
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "color"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "label": {"type": "string"},
          "test_label": {"type": "string"},
          "gold_label": {"type": "string"},
          "test_ind": {"type": "integer", "minimum": -1},
          "gold_ind": {"type": "integer", "minimum": -1},
          "color": {"$ref": "#/definitions/color"}
        }
      }
    },
    "links": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source", "target", "color"],
        "properties": {
          "source": {"type": "string"},
          "target": {"type": "string"},
          "key": {"type": "integer", "minimum": 0},
          "label": {"type": "string"},
          "test_label": {"type": "string"},
          "gold_label": {"type": "string"},
          "color": {"$ref": "#/definitions/color"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("node-link.json", nodeLinkSchema)
	})
	return schema, schemaErr
}

// validateNodeLink checks raw JSON against the node-link schema.
func validateNodeLink(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return s.Validate(v)
}
