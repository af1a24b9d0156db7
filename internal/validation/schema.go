package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spboyer/arena/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/evaluation.schema.json
var evaluationSchemaJSON string

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// evaluationSchema is the compiled JSON Schema for evaluation exports.
var evaluationSchema *jsonschema.Schema

func init() {
	evaluationSchema = mustCompileSchema(evaluationSchemaJSON, "evaluation.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateEvaluationFile validates an exported evaluation file.
func ValidateEvaluationFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading evaluation file: %w", err)
	}
	return ValidateEvaluationBytes(data), nil
}

// ValidateEvaluationBytes validates raw JSON bytes against the evaluation
// schema and returns one message per violation, each prefixed by its JSON
// pointer. A document that passes the schema must also normalize.
func ValidateEvaluationBytes(data []byte) []string {
	_, violations := DecodeEvaluation(data)
	return violations
}

// DecodeEvaluation validates data and decodes it. The evaluation is returned
// only when there are no violations, so anything it returns can be stored
// and later read back without error.
func DecodeEvaluation(data []byte) (*models.RawEvaluation, []string) {
	// UnmarshalJSON keeps numbers as json.Number so integer checks are exact.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	if violations := validateAgainstSchema(evaluationSchema, doc); len(violations) > 0 {
		return nil, violations
	}

	var raw models.RawEvaluation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, []string{fmt.Sprintf("/: %v", err)}
	}
	if _, err := raw.Normalize(); err != nil {
		return nil, []string{fmt.Sprintf("/criteria_snapshot: %v", err)}
	}
	return &raw, nil
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}
