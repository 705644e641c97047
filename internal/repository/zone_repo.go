package repository

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chicommerce/catalog-api/internal/models"
)

// attachZones loads the zones of every given template with a single query.
func attachZones(ctx context.Context, q sqlx.ExtContext, templates []*models.Template) error {
	if len(templates) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(templates))
	byID := make(map[uuid.UUID]*models.Template, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
		t.Zones = []models.CustomizationZone{}
		byID[t.ID] = t
	}

	query, args, err := sqlx.In(`SELECT `+zoneColumns+` FROM customization_zones WHERE template_id IN (?)`, idStrings(ids))
	if err != nil {
		return err
	}
	var zones []models.CustomizationZone
	if err := sqlx.SelectContext(ctx, q, &zones, q.Rebind(query), args...); err != nil {
		return err
	}

	for _, z := range zones {
		if t, ok := byID[z.TemplateID]; ok {
			t.Zones = append(t.Zones, z)
		}
	}
	for _, t := range templates {
		sortZones(t.Zones)
	}
	return nil
}

// sortZones orders zones for rendering: order index, then key.
func sortZones(zones []models.CustomizationZone) {
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].OrderIndex != zones[j].OrderIndex {
			return zones[i].OrderIndex < zones[j].OrderIndex
		}
		return zones[i].Key < zones[j].Key
	})
}
