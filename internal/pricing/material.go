package pricing

import (
	"errors"
	"fmt"
	"math"
)

// Material is a printable substrate from the catalog.
type Material struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"` // per m²
	LeadTime    string  `json:"lead_time" db:"lead_time"`
	Description string  `json:"description" db:"description"`
}

var (
	ErrEmptyCatalog     = errors.New("catalog has no materials")
	ErrDuplicateID      = errors.New("duplicate material id")
	ErrInvalidUnitPrice = errors.New("invalid unit price")
	ErrUnknownDefault   = errors.New("default material not in catalog")
)

// Catalog is an immutable ordered set of materials with one default.
type Catalog struct {
	materials []Material
	index     map[string]int
	defaultID string
}

func NewCatalog(materials []Material, defaultID string) (*Catalog, error) {
	const operation = "pricing.NewCatalog"

	if len(materials) == 0 {
		return nil, fmt.Errorf("%s: %w", operation, ErrEmptyCatalog)
	}

	c := &Catalog{
		materials: make([]Material, len(materials)),
		index:     make(map[string]int, len(materials)),
		defaultID: defaultID,
	}
	copy(c.materials, materials)

	for i, m := range c.materials {
		if m.ID == "" {
			return nil, fmt.Errorf("%s: material #%d has empty id", operation, i)
		}
		if _, exists := c.index[m.ID]; exists {
			return nil, fmt.Errorf("%s: %q: %w", operation, m.ID, ErrDuplicateID)
		}
		if !(m.UnitPrice > 0) || math.IsInf(m.UnitPrice, 0) {
			return nil, fmt.Errorf("%s: %q price %.2f: %w", operation, m.ID, m.UnitPrice, ErrInvalidUnitPrice)
		}
		c.index[m.ID] = i
	}

	if _, exists := c.index[defaultID]; !exists {
		return nil, fmt.Errorf("%s: %q: %w", operation, defaultID, ErrUnknownDefault)
	}

	return c, nil
}

// Lookup returns the material with the given id. The second value is false
// when the id does not reference a catalog entry.
func (c *Catalog) Lookup(id string) (Material, bool) {
	i, ok := c.index[id]
	if !ok {
		return Material{}, false
	}
	return c.materials[i], true
}

// Materials returns the catalog entries in display order.
func (c *Catalog) Materials() []Material {
	out := make([]Material, len(c.materials))
	copy(out, c.materials)
	return out
}

func (c *Catalog) Default() Material {
	return c.materials[c.index[c.defaultID]]
}

func (c *Catalog) DefaultID() string {
	return c.defaultID
}

func (c *Catalog) Len() int {
	return len(c.materials)
}

const DefaultMaterialID = "korea"

// DefaultMaterials is the banner price list the shop publishes.
func DefaultMaterials() []Material {
	return []Material{
		{ID: "china", Name: "Китай", UnitPrice: 170, LeadTime: "1-2 дня", Description: "Бюджетный вариант для временных баннеров"},
		{ID: "korea", Name: "Корея", UnitPrice: 235, LeadTime: "2-3 дня", Description: "Оптимальное соотношение цена-качество"},
		{ID: "cast", Name: "Литой", UnitPrice: 300, LeadTime: "3-4 дня", Description: "Премиум качество для долговечного использования"},
		{ID: "blackout", Name: "Блэкаут", UnitPrice: 300, LeadTime: "3-4 дня", Description: "Не просвечивает, идеален для двусторонней печати"},
		{ID: "mesh", Name: "Сетка", UnitPrice: 350, LeadTime: "2-3 дня", Description: "Для уличных баннеров с сильным ветром"},
		{ID: "translucent", Name: "Транслюцент", UnitPrice: 600, LeadTime: "5-7 дней (под заказ)", Description: "Светопропускающий материал для подсветки"},
	}
}

// DefaultCatalog builds the catalog from DefaultMaterials.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultMaterials(), DefaultMaterialID)
	if err != nil {
		panic(err)
	}
	return c
}
