package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	botschema "github.com/Paintersrp/botctl/schema"
)

var (
	schemaOnce   sync.Once
	targetSchema *jsonschema.Schema
	schemaErr    error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("target.v1.json", bytes.NewReader(botschema.TargetV1Schema)); err != nil {
			schemaErr = fmt.Errorf("add target schema resource: %w", err)
			return
		}
		targetSchema, schemaErr = compiler.Compile("target.v1.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile target schema: %w", schemaErr)
		}
	})
	return targetSchema, schemaErr
}

// checkSchema validates a generically decoded manifest against the embedded
// JSON schema before it is decoded into a Target.
func checkSchema(doc map[string]any) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so YAML scalars become the types the
	// validator expects.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("prepare manifest for schema validation: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("prepare manifest for schema validation: %w", err)
	}

	err = schema.Validate(instance)
	var vErr *jsonschema.ValidationError
	if errors.As(err, &vErr) {
		var b strings.Builder
		describeViolation(&b, vErr, 0)
		return fmt.Errorf("schema validation failed:\n%s", strings.TrimRight(b.String(), "\n"))
	}
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func describeViolation(b *strings.Builder, err *jsonschema.ValidationError, depth int) {
	wrapper := len(err.Causes) > 0 && strings.HasPrefix(err.Message, "doesn't validate with")
	if !wrapper {
		fmt.Fprintf(b, "%s- %s: %s\n", strings.Repeat("  ", depth), fieldPath(err.InstanceLocation), err.Message)
		depth++
	}
	for _, cause := range err.Causes {
		describeViolation(b, cause, depth)
	}
}

// fieldPath turns a JSON pointer such as /runner/command/0 into
// runner.command[0].
func fieldPath(ptr string) string {
	var b strings.Builder
	for _, segment := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if segment == "" {
			continue
		}
		segment = strings.NewReplacer("~1", "/", "~0", "~").Replace(segment)
		if _, err := strconv.Atoi(segment); err == nil {
			fmt.Fprintf(&b, "[%s]", segment)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segment)
	}
	if b.Len() == 0 {
		return "manifest"
	}
	return b.String()
}
