// Package prompts holds the prompt template store: the JSON persona
// template format, the embedded defaults, and the task description
// table. Every template that enters a run is validated against an
// embedded JSON Schema first, so a malformed template fails the run
// up front instead of mid-dialogue.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/podiumlabs/podium/internal/llm"
	"github.com/podiumlabs/podium/internal/models"
)

//go:embed data/meta-template.json
var defaultTemplateJSON string

//go:embed data/template.schema.json
var templateSchemaJSON string

//go:embed data/expert-identity.txt
var expertIdentityTemplate string

//go:embed data/multipersona.txt
var multipersonaInstruction string

// defaultPrinter formats schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// templateSchema is the compiled JSON Schema for template files.
var templateSchema *jsonschema.Schema

func init() {
	templateSchema = mustCompileSchema(templateSchemaJSON, "template.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Persona is one named participant in a template: its seed messages and
// the sampling parameters used whenever that persona is called.
type Persona struct {
	MessageList []models.Message   `json:"message-list"`
	Parameters  llm.SamplingParams `json:"parameters"`
}

// Template is a parsed, validated prompt template.
type Template struct {
	Conductor  Persona  `json:"conductor"`
	Generator  *Persona `json:"generator"`
	Summarizer *Persona `json:"summarizer"`

	ErrorMessage         string `json:"error-message"`
	FinalAnswerIndicator string `json:"final-answer-indicator"`
	ExpertPythonMessage  string `json:"expert-python-message"`
	IntermediateFeedback string `json:"intermediate-feedback"`
}

// Default returns the embedded default template.
func Default() *Template {
	tmpl, err := parseTemplate([]byte(defaultTemplateJSON))
	if err != nil {
		// The embedded template is validated by tests; reaching here
		// means the binary itself is broken.
		panic(fmt.Sprintf("embedded default template is invalid: %v", err))
	}
	return tmpl
}

// Load reads and validates a template file. An empty path returns the
// embedded default.
func Load(path string) (*Template, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}

	tmpl, err := parseTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", path, err)
	}
	return tmpl, nil
}

func parseTemplate(data []byte) (*Template, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if errs := validateAgainstSchema(templateSchema, doc); len(errs) > 0 {
		return nil, fmt.Errorf("schema validation failed:\n  %s", strings.Join(errs, "\n  "))
	}

	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}

	applyTemplateDefaults(&tmpl)
	return &tmpl, nil
}

// applyTemplateDefaults fills optional fields from the embedded
// default, so partial templates only need to override what they change.
func applyTemplateDefaults(tmpl *Template) {
	var fallback Template
	// The embedded JSON always decodes; it is schema-checked in init
	// paths and tests.
	_ = json.Unmarshal([]byte(defaultTemplateJSON), &fallback)

	if tmpl.Generator == nil {
		tmpl.Generator = fallback.Generator
	}
	if tmpl.Summarizer == nil {
		tmpl.Summarizer = fallback.Summarizer
	}
	if tmpl.ErrorMessage == "" {
		tmpl.ErrorMessage = fallback.ErrorMessage
	}
	if tmpl.FinalAnswerIndicator == "" {
		tmpl.FinalAnswerIndicator = fallback.FinalAnswerIndicator
	}
	if tmpl.ExpertPythonMessage == "" {
		tmpl.ExpertPythonMessage = fallback.ExpertPythonMessage
	}
	if tmpl.IntermediateFeedback == "" {
		tmpl.IntermediateFeedback = fallback.IntermediateFeedback
	}
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
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

// ExpertIdentityPrompt builds the few-shot prompt that asks the model
// to describe the most suitable expert for the given input.
func ExpertIdentityPrompt(input string) string {
	return fmt.Sprintf("%s\n\n[Instruction]:%s\n[Agent Description]:", strings.TrimSpace(expertIdentityTemplate), input)
}

// MultipersonaInstruction returns the system instruction for the
// multipersona strategy.
func MultipersonaInstruction() string {
	return strings.TrimSpace(multipersonaInstruction)
}
