package pricing

import (
	"fmt"
	"math"
)

// Inputs are clamped to these bounds so every Breakdown field stays finite.
const (
	MaxDimension    = 10_000.0 // m
	MaxQuantity     = 1_000_000
	maxGrommetCount = math.MaxInt32
)

// Config holds the fixed finishing prices.
type Config struct {
	GrommetStep      float64 // meters of perimeter per grommet
	GrommetUnitPrice float64
}

func DefaultConfig() Config {
	return Config{
		GrommetStep:      0.2, // one grommet every 20 cm
		GrommetUnitPrice: 20,
	}
}

func (c Config) Validate() error {
	if !(c.GrommetStep > 0) || math.IsInf(c.GrommetStep, 0) {
		return fmt.Errorf("invalid grommet step: %v", c.GrommetStep)
	}
	if !(c.GrommetUnitPrice >= 0) || math.IsInf(c.GrommetUnitPrice, 0) {
		return fmt.Errorf("invalid grommet unit price: %v", c.GrommetUnitPrice)
	}
	return nil
}

// Params is the state of one in-progress calculation.
type Params struct {
	MaterialID string  `json:"material_id"`
	Width      float64 `json:"width"`  // m
	Height     float64 `json:"height"` // m
	Quantity   int     `json:"quantity"`
	Grommets   bool    `json:"grommets"`
}

// Breakdown is the price computed from Params. Material is nil when the
// selected id is not in the catalog.
type Breakdown struct {
	Params           Params    `json:"params"`
	Material         *Material `json:"material"`
	Area             float64   `json:"area"`
	Perimeter        float64   `json:"perimeter"`
	GrommetCount     int       `json:"grommet_count"`
	GrommetUnitPrice float64   `json:"grommet_unit_price"`
	MaterialSubtotal float64   `json:"material_subtotal"`
	GrommetSubtotal  float64   `json:"grommet_subtotal"`
	Total            float64   `json:"total"`
}

// MaterialName is empty when no material is resolved.
func (b Breakdown) MaterialName() string {
	if b.Material == nil {
		return ""
	}
	return b.Material.Name
}

func (b Breakdown) LeadTime() string {
	if b.Material == nil {
		return ""
	}
	return b.Material.LeadTime
}

type Engine struct {
	catalog *Catalog
	cfg     Config
}

func NewEngine(catalog *Catalog, cfg Config) (*Engine, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pricing.NewEngine: %w", err)
	}
	return &Engine{catalog: catalog, cfg: cfg}, nil
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

func (e *Engine) Config() Config {
	return e.cfg
}

// NewParams returns the calculator's initial selection.
func (e *Engine) NewParams() Params {
	return Params{
		MaterialID: e.catalog.DefaultID(),
		Width:      3,
		Height:     2,
		Quantity:   1,
	}
}

// Compute prices params against the catalog. It never fails: invalid
// dimensions count as zero, quantity floors at 1 and an unknown material
// is priced at zero.
func (e *Engine) Compute(p Params) Breakdown {
	p = Sanitize(p)

	var unitPrice float64
	var material *Material
	if m, ok := e.catalog.Lookup(p.MaterialID); ok {
		material = &m
		unitPrice = m.UnitPrice
	}

	qty := float64(p.Quantity)

	area := p.Width * p.Height
	perimeter := 2 * (p.Width + p.Height)
	grommetCount := grommetsFor(perimeter, e.cfg.GrommetStep)

	materialSubtotal := area * unitPrice * qty

	var grommetSubtotal float64
	if p.Grommets {
		grommetSubtotal = float64(grommetCount) * e.cfg.GrommetUnitPrice * qty
	}

	return Breakdown{
		Params:           p,
		Material:         material,
		Area:             finite(area),
		Perimeter:        finite(perimeter),
		GrommetCount:     grommetCount,
		GrommetUnitPrice: e.cfg.GrommetUnitPrice,
		MaterialSubtotal: finite(materialSubtotal),
		GrommetSubtotal:  finite(grommetSubtotal),
		Total:            finite(materialSubtotal + grommetSubtotal),
	}
}

// Sanitize coerces params to finite dimensions in [0, MaxDimension] and a
// quantity in [1, MaxQuantity].
func Sanitize(p Params) Params {
	p.Width = dimension(p.Width)
	p.Height = dimension(p.Height)
	switch {
	case p.Quantity < 1:
		p.Quantity = 1
	case p.Quantity > MaxQuantity:
		p.Quantity = MaxQuantity
	}
	return p
}

func dimension(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Min(v, MaxDimension)
}

// grommetsFor is ceil(perimeter/step), counted in float64 and clamped before
// the int conversion.
func grommetsFor(perimeter, step float64) int {
	n := math.Ceil(perimeter / step)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	if n > maxGrommetCount {
		return maxGrommetCount
	}
	return int(n)
}

// finite maps +Inf to the largest float64 so results always serialize.
func finite(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	}
	return v
}
