package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/spec-kit/staffing-service/internal/domain"
	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

const manifestSchemaID = "https://staffing-service.local/schemas/vaccine-manifest.json"

var (
	manifestOnce   sync.Once
	manifestSchema *jschema.Schema
	manifestErr    error
)

// ManifestSchema returns the JSON Schema of an appointment's vaccine list: an array of
// objects reflected from domain.VaccineDose.
func ManifestSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	item := r.Reflect(&domain.VaccineDose{})
	item.Version = ""
	item.ID = ""

	schema := map[string]any{
		"$schema":     jsonschema.Version,
		"$id":         manifestSchemaID,
		"title":       "Vaccine manifest",
		"description": "Vaccines administered during an appointment",
		"type":        "array",
		"items":       item,
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest schema: %w", err)
	}
	return data, nil
}

func compiledManifestSchema() (*jschema.Schema, error) {
	manifestOnce.Do(func() {
		data, err := ManifestSchema()
		if err != nil {
			manifestErr = err
			return
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			manifestErr = fmt.Errorf("parse manifest schema: %w", err)
			return
		}
		c := jschema.NewCompiler()
		if err := c.AddResource("vaccine-manifest.json", doc); err != nil {
			manifestErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		manifestSchema, manifestErr = c.Compile("vaccine-manifest.json")
	})
	return manifestSchema, manifestErr
}

// DecodeVaccines validates raw against the manifest schema and decodes it. Empty input and
// JSON null both mean "no vaccines".
func DecodeVaccines(raw json.RawMessage) ([]domain.VaccineDose, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	sch, err := compiledManifestSchema()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(trimmed))
	if err != nil {
		return nil, vaccinesInvalid("must be valid JSON")
	}
	if err := sch.Validate(inst); err != nil {
		var ve *jschema.ValidationError
		if errors.As(err, &ve) {
			return nil, vaccinesInvalid(schemaMessages(ve)...)
		}
		return nil, vaccinesInvalid(err.Error())
	}

	var doses []domain.VaccineDose
	if err := json.Unmarshal(trimmed, &doses); err != nil {
		return nil, vaccinesInvalid(err.Error())
	}
	return doses, nil
}

// schemaMessages flattens the leaves of a validation error tree.
func schemaMessages(ve *jschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", loc, leafMessage(ve.Error()))}
	}
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, schemaMessages(cause)...)
	}
	return msgs
}

func leafMessage(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(strings.TrimPrefix(lines[len(lines)-1], "- "))
}

func vaccinesInvalid(msgs ...string) error {
	return apperrors.NewValidationError("request validation failed", map[string]any{"vaccines": msgs})
}
