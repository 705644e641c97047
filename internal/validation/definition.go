// Package validation checks inbound payloads before any repository call runs.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/utils"
)

//go:embed definition.cue
var definitionSchema string

// ParseDefinition validates a template definition document and returns its
// typed form. Every failure wraps utils.ErrInvalidDefinition.
func ParseDefinition(raw []byte) (*models.TemplateDefinition, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, &utils.DefinitionError{Reason: "Template definition cannot be empty"}
	}

	def, err := decodeDefinition(trimmed)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(trimmed); err != nil {
		return nil, err
	}
	return def, nil
}

func decodeDefinition(raw []byte) (*models.TemplateDefinition, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &utils.DefinitionError{Reason: "Template definition must be a JSON object"}
	}

	zonesRaw, ok := doc["zones"]
	if !ok {
		return nil, &utils.DefinitionError{Reason: "Template definition must contain 'zones'"}
	}

	var zones map[string]json.RawMessage
	if err := json.Unmarshal(zonesRaw, &zones); err != nil || zones == nil {
		return nil, &utils.DefinitionError{Reason: "'zones' must be an object"}
	}

	keys := make([]string, 0, len(zones))
	for k := range zones {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	def := &models.TemplateDefinition{Zones: make(map[string]models.ZoneSpec, len(zones))}
	for _, key := range keys {
		spec, err := decodeZone(key, zones[key])
		if err != nil {
			return nil, err
		}
		def.Zones[key] = spec
	}
	return def, nil
}

func decodeZone(key string, raw json.RawMessage) (models.ZoneSpec, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.ZoneSpec{}, &utils.DefinitionError{Zone: key, Reason: "must be an object"}
	}

	typeRaw, ok := fields["type"]
	if !ok {
		return models.ZoneSpec{}, &utils.DefinitionError{Zone: key, Reason: "must declare a 'type'"}
	}
	var typ string
	if err := json.Unmarshal(typeRaw, &typ); err != nil {
		return models.ZoneSpec{}, &utils.DefinitionError{Zone: key, Reason: "'type' must be a string"}
	}

	spec := models.ZoneSpec{Type: models.ZoneType(typ)}
	if !spec.Type.Valid() {
		return models.ZoneSpec{}, &utils.DefinitionError{
			Zone:   key,
			Reason: fmt.Sprintf("invalid type '%s', must be one of: text, image, color, shape", typ),
		}
	}

	switch spec.Type {
	case models.ZoneTypeText:
		if ml, ok := fields["max_length"]; ok && !isNull(ml) {
			var n int
			if err := json.Unmarshal(ml, &n); err != nil {
				return models.ZoneSpec{}, &utils.DefinitionError{Zone: key, Reason: "'max_length' must be an integer"}
			}
			if n <= 0 {
				return models.ZoneSpec{}, &utils.DefinitionError{Zone: key, Reason: "'max_length' must be positive"}
			}
			spec.MaxLength = &n
		}
	case models.ZoneTypeImage:
		if f, ok := fields["formats"]; ok && !isNull(f) {
			var formats []string
			if err := json.Unmarshal(f, &formats); err != nil {
				return models.ZoneSpec{}, &utils.DefinitionError{Zone: key, Reason: "'formats' must be a list of strings"}
			}
			spec.Formats = formats
		}
	}
	return spec, nil
}

// checkSchema unifies the document with #Definition. A fresh CUE context is
// used per call because contexts are not safe for concurrent use.
func checkSchema(raw []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(definitionSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile definition schema: %w", err)
	}

	expr, err := cuejson.Extract("definition.json", raw)
	if err != nil {
		return &utils.DefinitionError{Reason: "Template definition must be valid JSON"}
	}
	data := ctx.BuildExpr(expr)

	v := schema.LookupPath(cue.ParsePath("#Definition")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &utils.DefinitionError{Reason: "definition does not match the zone schema: " + err.Error()}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
