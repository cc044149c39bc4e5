package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/schemas"
)

const reportSchemaURL = "https://stoik.com/trawler/report.schema.json"

// SchemaValidator checks raw report documents against the report schema.
// It is compiled once and safe for concurrent use.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

func NewSchemaValidator(schema []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if err := compiler.AddResource(reportSchemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to load report schema: %w", err)
	}

	compiled, err := compiler.Compile(reportSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile report schema: %w", err)
	}

	return &SchemaValidator{schema: compiled}, nil
}

// LoadSchemaValidator reads the schema at path, or uses the embedded one when
// path is empty.
func LoadSchemaValidator(path string) (*SchemaValidator, error) {
	if path == "" {
		return NewSchemaValidator(schemas.Report)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report schema: %w", err)
	}

	return NewSchemaValidator(content)
}

func (v *SchemaValidator) Validate(document []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(document))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", domain.ErrInvalidReport, err)
	}

	if err := v.schema.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidReport, describe(validationErr))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidReport, err)
	}

	if location, found := findNUL(value, ""); found {
		return fmt.Errorf("%w: %s: NUL character is not allowed", domain.ErrInvalidReport, location)
	}

	return nil
}

// findNUL returns the location of the first string containing U+0000, which
// text columns cannot store.
func findNUL(value any, location string) (string, bool) {
	switch v := value.(type) {
	case string:
		if strings.ContainsRune(v, 0) {
			if location == "" {
				location = "/"
			}
			return location, true
		}
	case []any:
		for i, item := range v {
			if found, ok := findNUL(item, location+"/"+strconv.Itoa(i)); ok {
				return found, true
			}
		}
	case map[string]any:
		for key, item := range v {
			if strings.ContainsRune(key, 0) {
				return location + "/" + key, true
			}
			if found, ok := findNUL(item, location+"/"+key); ok {
				return found, true
			}
		}
	}
	return "", false
}

// describe returns the deepest cause, which names the offending field.
func describe(err *jsonschema.ValidationError) string {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	location := err.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Sprintf("%s: %s", location, err.Message)
}
