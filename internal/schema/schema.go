package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/zmkgen/internal/yamlnode"
)

// Embedded schemas.
const (
	HardwareMetadata = "hardware-metadata.schema.json"
	BuildMatrix      = "build-matrix.schema.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
	printer     = message.NewPrinter(language.English)
)

func compileAll() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		names := []string{HardwareMetadata, BuildMatrix}
		for _, name := range names {
			data, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = fmt.Errorf("reading schema %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshaling schema %s: %w", name, err)
				return
			}
			if err := c.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("adding schema %s: %w", name, err)
				return
			}
		}

		compiled = make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			s, err := c.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("compiling schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// Validate checks a parsed YAML document against the named schema. It
// returns ValidationErrors when the document does not conform.
func Validate(name string, doc *yaml.Node) error {
	schemas, err := compileAll()
	if err != nil {
		return err
	}
	s, ok := schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var raw any
	if err := doc.Decode(&raw); err != nil {
		return fmt.Errorf("decoding YAML: %w", err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = s.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating: %w", err)
	}

	lines := yamlnode.Lines(doc)
	var errs ValidationErrors
	seen := make(map[string]bool)
	collect(ve, func(loc []string, msg string) {
		field := fieldPath(doc, loc)
		if seen[field+"|"+msg] {
			return
		}
		seen[field+"|"+msg] = true
		errs = append(errs, ValidationError{Field: field, Message: msg, Line: lines[field]})
	})
	if len(errs) == 0 {
		errs = ValidationErrors{{Message: ve.Error()}}
	}
	return errs
}

// collect visits the leaf errors of a validation error tree.
func collect(ve *jsonschema.ValidationError, visit func(loc []string, msg string)) {
	if len(ve.Causes) > 0 {
		for _, cause := range ve.Causes {
			collect(cause, visit)
		}
		return
	}
	if ve.ErrorKind == nil {
		return
	}
	visit(ve.InstanceLocation, ve.ErrorKind.LocalizedString(printer))
}

// fieldPath renders an instance location the way yamlnode.Lines keys it:
// ["siblings", "1"] becomes "siblings[1]".
func fieldPath(doc *yaml.Node, loc []string) string {
	node := yamlnode.Root(doc)
	path := ""
	for _, part := range loc {
		if node != nil && node.Kind == yaml.SequenceNode {
			path += "[" + part + "]"
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node.Content) {
				node = nil
			} else {
				node = node.Content[i]
			}
			continue
		}
		if path != "" {
			path += "."
		}
		path += part
		node = yamlnode.Lookup(node, part)
	}
	return path
}
