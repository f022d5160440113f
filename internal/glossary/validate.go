package glossary

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaCUE string

// validateSchema unifies the raw YAML document with the embedded CUE
// schema. Any mismatch (missing citation, bad pattern kind, non-positive
// threshold) is reported as a ConfigurationError carrying the CUE
// diagnostics.
func validateSchema(raw []byte, source string) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a programming
		// error, but it still surfaces as a configuration failure.
		return &ConfigurationError{
			Code:    ErrCodeSchema,
			Path:    source,
			Message: fmt.Sprintf("embedded schema invalid: %v", err),
			Err:     err,
		}
	}
	defn := schema.LookupPath(cue.ParsePath("#Glossary"))
	if err := defn.Err(); err != nil {
		return &ConfigurationError{
			Code:    ErrCodeSchema,
			Path:    source,
			Message: fmt.Sprintf("schema missing #Glossary definition: %v", err),
			Err:     err,
		}
	}

	file, err := cueyaml.Extract(source, raw)
	if err != nil {
		return &ConfigurationError{
			Code:    ErrCodeMalformed,
			Path:    source,
			Message: "glossary YAML parse failed",
			Err:     err,
		}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &ConfigurationError{
			Code:    ErrCodeMalformed,
			Path:    source,
			Message: "glossary YAML build failed",
			Err:     err,
		}
	}

	unified := defn.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ConfigurationError{
			Code:    ErrCodeSchema,
			Path:    source,
			Message: cueerrors.Details(err, nil),
			Err:     err,
		}
	}
	return nil
}
