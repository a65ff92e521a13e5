// Package schema validates YAML documents against the JSON schemas embedded
// in the binary: ZMK hardware metadata (*.zmk.yml) and the build matrix
// (build.yaml).
//
// Failures are reported as ValidationErrors carrying the field path and the
// line it appears on:
//
//	doc, _ := yamlnode.Parse(data)
//	if err := schema.Validate(schema.HardwareMetadata, doc); err != nil {
//		var verrs schema.ValidationErrors
//		errors.As(err, &verrs)
//	}
package schema
