// Package params reads and writes dotnet-svcutil params documents.
package params

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var documentSchema string

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Read loads the params document at path and returns its defaulted
// GenerationParameters. A malformed document yields a *ParseError.
func Read(path string) (GenerationParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenerationParameters{}, fmt.Errorf("failed to read params document %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes and validates raw document bytes. path is used for error
// reporting only.
func Parse(path string, data []byte) (GenerationParameters, error) {
	doc, err := decode(path, data)
	if err != nil {
		return GenerationParameters{}, err
	}
	return FromDocument(doc), nil
}

func decode(path string, data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, &ParseError{Path: path, Reason: err.Error(), Cause: err}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Document{}, &ParseError{Path: path, Reason: err.Error(), Cause: err}
	}
	if !result.Valid() {
		perr := &ParseError{Path: path, Reason: "document does not match schema"}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			perr.Fields = append(perr.Fields, FieldError{Field: field, Message: desc.Description()})
		}
		return Document{}, perr
	}

	return doc, nil
}

// Write stores doc at path as indented JSON, creating the parent directory.
func Write(path string, doc Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &FilesystemError{Op: "create directory", Path: dir, Cause: err}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode params document: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Cause: err}
	}
	return nil
}
