// Package catalog holds the read-only reference tables the hydraulic
// calculations depend on: pipes, pumps, static fitting losses and tank coils.
// Tables are built once and never mutated; lookups return copies.
package catalog

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownMaterial = errors.New("catalog: unknown material")
	ErrUnknownSize     = errors.New("catalog: unknown nominal size")
	ErrUnknownPump     = errors.New("catalog: unknown pump model")
	ErrUnknownTank     = errors.New("catalog: unknown tank coil")
	ErrUnknownVersion  = errors.New("catalog: unknown version")
	ErrInvalidEntry    = errors.New("catalog: invalid entry")
)

// PipeSpec is one (material, nominal size) pair with its geometry in mm.
type PipeSpec struct {
	Material        string  `json:"material"`
	NominalSize     string  `json:"nominal_size"`
	InnerDiameterMM float64 `json:"inner_diameter_mm"`
	RoughnessMM     float64 `json:"roughness_mm"`
}

// DiameterM and RoughnessM are the single mm → m conversion point.
func (p PipeSpec) DiameterM() float64  { return p.InnerDiameterMM / 1000 }
func (p PipeSpec) RoughnessM() float64 { return p.RoughnessMM / 1000 }

type Size struct {
	Label           string  `json:"label"`
	InnerDiameterMM float64 `json:"inner_diameter_mm"`
}

// Material is a pipe material with a single absolute roughness and its sizes in display order.
type Material struct {
	Name        string  `json:"name"`
	RoughnessMM float64 `json:"roughness_mm"`
	Sizes       []Size  `json:"sizes"`
}

type PipeCatalog struct {
	materials []Material
	index     map[string]int
}

func NewPipeCatalog(materials []Material) (*PipeCatalog, error) {
	c := &PipeCatalog{
		materials: make([]Material, 0, len(materials)),
		index:     make(map[string]int, len(materials)),
	}
	for _, m := range materials {
		if m.Name == "" || m.RoughnessMM < 0 || len(m.Sizes) == 0 {
			return nil, fmt.Errorf("%w: material %q", ErrInvalidEntry, m.Name)
		}
		if _, dup := c.index[m.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidEntry, m.Name)
		}
		seen := make(map[string]bool, len(m.Sizes))
		for _, s := range m.Sizes {
			if s.Label == "" || s.InnerDiameterMM <= 0 || seen[s.Label] {
				return nil, fmt.Errorf("%w: %s size %q", ErrInvalidEntry, m.Name, s.Label)
			}
			seen[s.Label] = true
		}
		cp := m
		cp.Sizes = append([]Size(nil), m.Sizes...)
		c.index[m.Name] = len(c.materials)
		c.materials = append(c.materials, cp)
	}
	return c, nil
}

func (c *PipeCatalog) Lookup(material, size string) (PipeSpec, error) {
	i, ok := c.index[material]
	if !ok {
		return PipeSpec{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, material)
	}
	m := c.materials[i]
	for _, s := range m.Sizes {
		if s.Label == size {
			return PipeSpec{
				Material:        m.Name,
				NominalSize:     s.Label,
				InnerDiameterMM: s.InnerDiameterMM,
				RoughnessMM:     m.RoughnessMM,
			}, nil
		}
	}
	return PipeSpec{}, fmt.Errorf("%w: %q for %s", ErrUnknownSize, size, material)
}

func (c *PipeCatalog) Materials() []string {
	out := make([]string, len(c.materials))
	for i, m := range c.materials {
		out[i] = m.Name
	}
	return out
}

func (c *PipeCatalog) Sizes(material string) ([]string, error) {
	i, ok := c.index[material]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMaterial, material)
	}
	out := make([]string, len(c.materials[i].Sizes))
	for j, s := range c.materials[i].Sizes {
		out[j] = s.Label
	}
	return out, nil
}

// All returns a deep copy of the table.
func (c *PipeCatalog) All() []Material {
	out := make([]Material, len(c.materials))
	for i, m := range c.materials {
		out[i] = m
		out[i].Sizes = append([]Size(nil), m.Sizes...)
	}
	return out
}

// PumpOperatingPoint is the rated duty of a selectable heat-pump model.
type PumpOperatingPoint struct {
	Label            string  `json:"label"`
	RatedFlowM3H     float64 `json:"rated_flow_m3_h"`
	AvailableHeadMCE float64 `json:"available_head_mce"`
}

type PumpRegistry struct {
	pumps map[string]PumpOperatingPoint
}

func NewPumpRegistry(points []PumpOperatingPoint) (*PumpRegistry, error) {
	r := &PumpRegistry{pumps: make(map[string]PumpOperatingPoint, len(points))}
	for _, p := range points {
		if p.Label == "" || p.RatedFlowM3H <= 0 || p.AvailableHeadMCE <= 0 {
			return nil, fmt.Errorf("%w: pump %q", ErrInvalidEntry, p.Label)
		}
		if _, dup := r.pumps[p.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate pump %q", ErrInvalidEntry, p.Label)
		}
		r.pumps[p.Label] = p
	}
	return r, nil
}

func (r *PumpRegistry) Lookup(label string) (PumpOperatingPoint, error) {
	p, ok := r.pumps[label]
	if !ok {
		return PumpOperatingPoint{}, fmt.Errorf("%w: %q", ErrUnknownPump, label)
	}
	return p, nil
}

func (r *PumpRegistry) Labels() []string {
	out := make([]string, 0, len(r.pumps))
	for l := range r.pumps {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// All returns the pumps sorted by label.
func (r *PumpRegistry) All() []PumpOperatingPoint {
	out := make([]PumpOperatingPoint, 0, len(r.pumps))
	for _, l := range r.Labels() {
		out = append(out, r.pumps[l])
	}
	return out
}

// StaticLossTable maps a pump model to the theoretical loss of its hydraulic
// kit (valves, filter, check valve, tee, buffer flanges), in mCE.
type StaticLossTable struct {
	losses map[string]float64
}

func NewStaticLossTable(losses map[string]float64) (*StaticLossTable, error) {
	t := &StaticLossTable{losses: make(map[string]float64, len(losses))}
	for k, v := range losses {
		if k == "" || v < 0 {
			return nil, fmt.Errorf("%w: static loss %q", ErrInvalidEntry, k)
		}
		t.losses[k] = v
	}
	return t, nil
}

func (t *StaticLossTable) StaticLoss(pumpLabel string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.losses[pumpLabel]
	return v, ok
}

func (t *StaticLossTable) All() map[string]float64 {
	out := make(map[string]float64, len(t.losses))
	for k, v := range t.losses {
		out[k] = v
	}
	return out
}

// TankCoil is the reference operating point of a storage-tank exchanger coil.
type TankCoil struct {
	Label            string  `json:"label"`
	ReferenceFlowM3H float64 `json:"reference_flow_m3_h"`
	ReferenceLossMCE float64 `json:"reference_loss_mce"`
}

type CoilTable struct {
	coils map[string]TankCoil
}

func NewCoilTable(coils []TankCoil) (*CoilTable, error) {
	t := &CoilTable{coils: make(map[string]TankCoil, len(coils))}
	for _, c := range coils {
		if c.Label == "" || c.ReferenceFlowM3H <= 0 || c.ReferenceLossMCE < 0 {
			return nil, fmt.Errorf("%w: tank coil %q", ErrInvalidEntry, c.Label)
		}
		if _, dup := t.coils[c.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate tank coil %q", ErrInvalidEntry, c.Label)
		}
		t.coils[c.Label] = c
	}
	return t, nil
}

func (t *CoilTable) Lookup(label string) (TankCoil, error) {
	c, ok := t.coils[label]
	if !ok {
		return TankCoil{}, fmt.Errorf("%w: %q", ErrUnknownTank, label)
	}
	return c, nil
}

func (t *CoilTable) All() []TankCoil {
	out := make([]TankCoil, 0, len(t.coils))
	for _, c := range t.coils {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Set bundles the tables one deployment runs with.
type Set struct {
	Version      string
	Pipes        *PipeCatalog
	Pumps        *PumpRegistry
	StaticLosses *StaticLossTable
	Coils        *CoilTable
}

// Raw is the unvalidated content of a Set, as read from a database or literal tables.
type Raw struct {
	Version      string
	Materials    []Material
	Pumps        []PumpOperatingPoint
	StaticLosses map[string]float64
	Coils        []TankCoil
}

func (r Raw) Build() (*Set, error) {
	pipes, err := NewPipeCatalog(r.Materials)
	if err != nil {
		return nil, err
	}
	pumps, err := NewPumpRegistry(r.Pumps)
	if err != nil {
		return nil, err
	}
	static, err := NewStaticLossTable(r.StaticLosses)
	if err != nil {
		return nil, err
	}
	coils, err := NewCoilTable(r.Coils)
	if err != nil {
		return nil, err
	}
	return &Set{
		Version:      r.Version,
		Pipes:        pipes,
		Pumps:        pumps,
		StaticLosses: static,
		Coils:        coils,
	}, nil
}
