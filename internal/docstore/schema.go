package docstore

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "docuscribe document",
  "type": "object",
  "required": ["title"],
  "properties": {
    "id": {"type": "string", "pattern": "^[^/\\s]+$"},
    "title": {"type": "string", "minLength": 1},
    "hashtags": {"type": "array", "items": {"type": "string"}},
    "updated_at": {"type": "string", "format": "date-time"},
    "text": {"type": "string"},
    "words": {"type": "array", "items": {"type": "string"}},
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["page", "start", "end"],
        "properties": {
          "page": {"type": "integer", "minimum": 1},
          "start": {"type": "integer", "minimum": 0},
          "end": {"type": "integer", "minimum": 0},
          "length": {"type": "integer", "minimum": 0},
          "title": {"type": "string"}
        }
      }
    }
  },
  "oneOf": [
    {"required": ["text"]},
    {"required": ["words"]}
  ]
}`

var documentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	compiler.AssertFormat = true
	if err := compiler.AddResource("document.json", strings.NewReader(documentSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("document.json")
})
