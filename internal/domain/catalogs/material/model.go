// Package material provides the material master catalog. Materials are
// the items batches are tracked against: films, laminates, inks,
// adhesives and granules used in flexible packaging.
package material

import (
	"context"

	"github.com/shopspring/decimal"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/types"
)

// MaterialType defines the material category.
type MaterialType string

const (
	TypeFilm     MaterialType = "film"
	TypeLaminate MaterialType = "laminate"
	TypeInk      MaterialType = "ink"
	TypeAdhesive MaterialType = "adhesive"
	TypeGranule  MaterialType = "granule"
	TypeOther    MaterialType = "other"
)

// Material represents a material master entry.
type Material struct {
	entity.Catalog

	// Type defines the material category
	Type MaterialType `db:"type" json:"type"`

	// UOM is the stock-keeping unit of measure (kg, m, pcs)
	UOM string `db:"uom" json:"uom"`

	// WidthMM is the web width in millimeters (films and laminates)
	WidthMM decimal.Decimal `db:"width_mm" json:"widthMm"`

	// GSM is grams per square meter
	GSM decimal.Decimal `db:"gsm" json:"gsm"`

	// Micron is the film thickness
	Micron decimal.Decimal `db:"micron" json:"micron"`

	// HSNCode is the harmonized tariff code
	HSNCode *string `db:"hsn_code" json:"hsnCode,omitempty"`

	// DefaultRate is the default purchase rate per UOM
	DefaultRate types.Money `db:"default_rate" json:"defaultRate"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewMaterial creates a new material with required fields.
func NewMaterial(code, name string, materialType MaterialType, uom string) *Material {
	return &Material{
		Catalog:     entity.NewCatalog(code, name),
		Type:        materialType,
		UOM:         uom,
		WidthMM:     decimal.Zero,
		GSM:         decimal.Zero,
		Micron:      decimal.Zero,
		DefaultRate: types.ZeroMoney(),
	}
}

// Validate implements entity.Validatable.
func (m *Material) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidMaterialType(m.Type) {
		return apperror.NewValidation("invalid material type").
			WithDetail("field", "type").
			WithDetail("value", string(m.Type))
	}
	if m.UOM == "" {
		return apperror.NewValidation("uom is required").
			WithDetail("field", "uom")
	}
	if m.WidthMM.IsNegative() {
		return apperror.NewValidation("width cannot be negative").
			WithDetail("field", "widthMm")
	}
	if m.GSM.IsNegative() {
		return apperror.NewValidation("gsm cannot be negative").
			WithDetail("field", "gsm")
	}
	if m.Micron.IsNegative() {
		return apperror.NewValidation("micron cannot be negative").
			WithDetail("field", "micron")
	}
	if m.DefaultRate.IsNegative() {
		return apperror.NewValidation("default rate cannot be negative").
			WithDetail("field", "defaultRate")
	}

	return nil
}

// IsWebMaterial returns true for materials handled as rolls.
func (m *Material) IsWebMaterial() bool {
	return m.Type == TypeFilm || m.Type == TypeLaminate
}

func isValidMaterialType(t MaterialType) bool {
	switch t {
	case TypeFilm, TypeLaminate, TypeInk, TypeAdhesive, TypeGranule, TypeOther:
		return true
	}
	return false
}
