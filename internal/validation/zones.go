package validation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/utils"
)

const maxZoneKeyLength = 100

// ValidateZoneInputs checks each supplied zone record on its own: key length,
// type, order index and key uniqueness within the request.
func ValidateZoneInputs(zones []models.ZoneInput) error {
	seen := make(map[string]struct{}, len(zones))
	for i, z := range zones {
		key := strings.TrimSpace(z.Key)
		if key == "" || utf8.RuneCountInString(key) > maxZoneKeyLength {
			return &utils.DefinitionError{
				Zone:   z.Key,
				Reason: fmt.Sprintf("zone %d key must be 1 to %d characters", i, maxZoneKeyLength),
			}
		}
		if !z.Type.Valid() {
			return &utils.DefinitionError{
				Zone:   z.Key,
				Reason: fmt.Sprintf("invalid type '%s', must be one of: text, image, color, shape", z.Type),
			}
		}
		if z.OrderIndex != nil && *z.OrderIndex < 0 {
			return &utils.DefinitionError{Zone: z.Key, Reason: "order index must be >= 0"}
		}
		nk := norm.NFC.String(key)
		if _, dup := seen[nk]; dup {
			return &utils.DefinitionError{Zone: z.Key, Reason: "duplicate zone key"}
		}
		seen[nk] = struct{}{}
	}
	return nil
}

// CheckZoneKeys requires the definition's zone keys and the supplied zone
// records to name exactly the same set. Keys are compared in NFC form.
func CheckZoneKeys(def *models.TemplateDefinition, zones []models.ZoneInput) error {
	defined := make(map[string]struct{}, len(def.Zones))
	for k := range def.Zones {
		defined[norm.NFC.String(k)] = struct{}{}
	}
	provided := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		provided[norm.NFC.String(strings.TrimSpace(z.Key))] = struct{}{}
	}

	var missing, extra []string
	for k := range defined {
		if _, ok := provided[k]; !ok {
			missing = append(missing, k)
		}
	}
	for k := range provided {
		if _, ok := defined[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	sort.Strings(missing)
	sort.Strings(extra)
	return &utils.ZoneMismatchError{Missing: missing, Extra: extra}
}

// CanonicalZoneKeys returns a copy of zones whose keys are spelled exactly
// as in the definition. Call it after CheckZoneKeys has passed; a key with
// no counterpart in the definition keeps its trimmed NFC form.
func CanonicalZoneKeys(def *models.TemplateDefinition, zones []models.ZoneInput) []models.ZoneInput {
	byNFC := make(map[string]string, len(def.Zones))
	for k := range def.Zones {
		byNFC[norm.NFC.String(k)] = k
	}
	out := make([]models.ZoneInput, len(zones))
	for i, z := range zones {
		key := norm.NFC.String(strings.TrimSpace(z.Key))
		if defKey, ok := byNFC[key]; ok {
			key = defKey
		}
		z.Key = key
		out[i] = z
	}
	return out
}
