package repo

import (
	"context"
	"database/sql"
	"fmt"

	"Hydra/internal/catalog"
)

const (
	materialsQuery = `SELECT m.name, m.roughness_mm, s.label, s.inner_diameter_mm
FROM pipe_materials m JOIN pipe_sizes s ON s.material_id = m.id
WHERE m.version = $1
ORDER BY m.position, s.position`

	pumpsQuery = `SELECT label, rated_flow_m3_h, available_head_mce, static_loss_mce
FROM pumps WHERE version = $1 ORDER BY label`

	coilsQuery = `SELECT label, reference_flow_m3_h, reference_loss_mce
FROM tank_coils WHERE version = $1 ORDER BY label`
)

// PostgresCatalogRepository reads a versioned catalog from the tables
// created by migrations/001_catalog.sql.
type PostgresCatalogRepository struct {
	db *sql.DB
}

func NewPostgresCatalogDB(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) LoadCatalog(ctx context.Context, version string) (*catalog.Set, error) {
	raw := catalog.Raw{Version: version, StaticLosses: map[string]float64{}}

	if err := r.loadMaterials(ctx, version, &raw); err != nil {
		return nil, fmt.Errorf("load pipe materials: %w", err)
	}
	if len(raw.Materials) == 0 {
		return nil, fmt.Errorf("%w: %q has no pipes", catalog.ErrUnknownVersion, version)
	}
	if err := r.loadPumps(ctx, version, &raw); err != nil {
		return nil, fmt.Errorf("load pumps: %w", err)
	}
	if err := r.loadCoils(ctx, version, &raw); err != nil {
		return nil, fmt.Errorf("load tank coils: %w", err)
	}
	return raw.Build()
}

func (r *PostgresCatalogRepository) loadMaterials(ctx context.Context, version string, raw *catalog.Raw) error {
	rows, err := r.db.QueryContext(ctx, materialsQuery, version)
	if err != nil {
		return err
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var (
			name      string
			roughness float64
			size      catalog.Size
		)
		if err := rows.Scan(&name, &roughness, &size.Label, &size.InnerDiameterMM); err != nil {
			return err
		}
		i, ok := index[name]
		if !ok {
			i = len(raw.Materials)
			index[name] = i
			raw.Materials = append(raw.Materials, catalog.Material{Name: name, RoughnessMM: roughness})
		}
		raw.Materials[i].Sizes = append(raw.Materials[i].Sizes, size)
	}
	return rows.Err()
}

func (r *PostgresCatalogRepository) loadPumps(ctx context.Context, version string, raw *catalog.Raw) error {
	rows, err := r.db.QueryContext(ctx, pumpsQuery, version)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p      catalog.PumpOperatingPoint
			static sql.NullFloat64
		)
		if err := rows.Scan(&p.Label, &p.RatedFlowM3H, &p.AvailableHeadMCE, &static); err != nil {
			return err
		}
		raw.Pumps = append(raw.Pumps, p)
		if static.Valid {
			raw.StaticLosses[p.Label] = static.Float64
		}
	}
	return rows.Err()
}

func (r *PostgresCatalogRepository) loadCoils(ctx context.Context, version string, raw *catalog.Raw) error {
	rows, err := r.db.QueryContext(ctx, coilsQuery, version)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c catalog.TankCoil
		if err := rows.Scan(&c.Label, &c.ReferenceFlowM3H, &c.ReferenceLossMCE); err != nil {
			return err
		}
		raw.Coils = append(raw.Coils, c)
	}
	return rows.Err()
}
