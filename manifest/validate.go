package manifest

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

// validate checks a decoded capiwrap.toml against the #Config schema.
// Unknown keys are rejected because the definition is closed.
func validate(raw map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	v := ctx.Encode(raw)
	if err := v.Err(); err != nil {
		return err
	}
	return def.Unify(v).Validate(cue.Concrete(true))
}
