// Package structured turns raw model text into schema-validated values.
package structured

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	contractx "github.com/tanpawarit/Chative-Frontline-Orchestrator/agent/contract"
)

const fence = "```"

// StripFence removes an optional fenced code block wrapper (optionally tagged json).
// Text without a leading fence is returned trimmed and otherwise untouched.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, fence) {
		return trimmed
	}

	body := trimmed[len(fence):]
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	return strings.TrimSpace(body)
}

type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

func Compile(name string, src string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

func MustCompile(name string, src string) *Schema {
	s, err := Compile(name, src)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string {
	return s.name
}

// Validate checks doc against the schema and reports every violation in one error.
func (s *Schema) Validate(doc []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", contractx.ErrSchemaViolation, s.name, err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return fmt.Errorf("%w: %s: %s", contractx.ErrSchemaViolation, s.name, strings.Join(violations, "; "))
}

// Decode strips an optional fence, validates the payload and decodes it into T.
// On any failure the zero value is returned, never a partially populated one.
func Decode[T any](content string, s *Schema) (T, error) {
	var zero T

	payload := StripFence(content)
	if payload == "" {
		return zero, fmt.Errorf("%w: %s: empty response", contractx.ErrSchemaViolation, s.name)
	}
	if !json.Valid([]byte(payload)) {
		return zero, fmt.Errorf("%w: %s: response is not valid json", contractx.ErrSchemaViolation, s.name)
	}
	if err := s.Validate([]byte(payload)); err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return zero, fmt.Errorf("%w: %s: decode: %v", contractx.ErrSchemaViolation, s.name, err)
	}
	return out, nil
}
