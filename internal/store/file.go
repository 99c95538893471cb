package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/baiirun/lanes/internal/model"
)

// WriteFile exports a collection as indented JSON. The file is written
// to a temporary sibling first and renamed into place.
func WriteFile(path string, todos []model.Todo) error {
	if todos == nil {
		todos = []model.Todo{}
	}
	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode todos: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lanes-export-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}

	name := tmp.Name()
	tmp = nil
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

// ReadFile reads an exported collection and normalizes every record.
func ReadFile(path string) ([]model.Todo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Todo{}, nil
	}
	todos, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return todos, nil
}

const schemaURL = "lanes://todos.schema.json"

// exportSchema describes an export file. It is stricter than Decode:
// Decode fills in anything, the schema rejects wrong types outright.
const exportSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id":        {"type": "string", "minLength": 1},
      "title":     {"type": "string"},
      "status":    {"enum": ["todo", "doing", "done"]},
      "priority":  {"enum": ["low", "medium", "high"]},
      "color":     {"type": "string"},
      "dueDate":   {"type": "string"},
      "pinned":    {"type": "boolean"},
      "position":  {"type": "integer", "minimum": 0},
      "createdAt": {"type": "integer"},
      "completed": {"type": "boolean"}
    },
    "required": ["id", "title"]
  }
}`

// ValidationError locates a schema violation in an import file.
type ValidationError struct {
	Path string // e.g. [2].status
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks raw import data against the export schema and
// returns one error per violation. A nil result means the data is valid.
func Validate(data []byte) ([]error, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(exportSchema)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return []error{&ValidationError{Err: err}}, nil
	}

	if err := schema.Validate(doc); err != nil {
		var errs []error
		collectSchemaErrors(&errs, err)
		return errs, nil
	}
	return nil, nil
}

func collectSchemaErrors(errs *[]error, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		*errs = append(*errs, err)
		return
	}
	if len(ve.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: pointerToPath(ve.InstanceLocation),
			Err:  fmt.Errorf("%s", ve.Message),
		})
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// pointerToPath turns "/2/status" into "[2].status".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
