package domain

import (
	"regexp"
	"strconv"
)

// Record is the external JSON shape consumed by downstream systems.
// Field names are part of the wire contract and must not change.
type Record struct {
	TipoDocumento string          `json:"tipo_documento"`
	Correo        string          `json:"correo,omitempty"`
	Asunto        string          `json:"asunto,omitempty"`
	Fecha         string          `json:"fecha,omitempty"`
	Productos     []ProductRecord `json:"productos"`
	Totales       TotalsRecord    `json:"totales"`
}

// ProductRecord is one line item in the wire contract.
type ProductRecord struct {
	Nombre         string  `json:"nombre"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario float64 `json:"precio_unitario"`
	Total          float64 `json:"total"`
}

// TotalsRecord is the totals block in the wire contract.
type TotalsRecord struct {
	Total  float64 `json:"total"`
	Moneda string  `json:"moneda"`
}

// Record converts the analysis to the external JSON shape.
func (a Analysis) Record() Record {
	productos := make([]ProductRecord, 0, len(a.Items))
	for _, it := range a.Items {
		productos = append(productos, ProductRecord{
			Nombre:         it.Name,
			Cantidad:       it.Quantity,
			PrecioUnitario: it.UnitPrice,
			Total:          it.Total,
		})
	}
	return Record{
		TipoDocumento: string(a.Tag),
		Correo:        bareAddress(a.From),
		Asunto:        a.Subject,
		Fecha:         a.Date,
		Productos:     productos,
		Totales: TotalsRecord{
			Total:  a.Totals.Amount,
			Moneda: a.Totals.Currency,
		},
	}
}

var addressPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

// bareAddress reduces a From header like `"Acme Sales" <po@acme.com>`
// to the address itself. Headers with no recognisable address pass
// through unchanged.
func bareAddress(from string) string {
	if addr := addressPattern.FindString(from); addr != "" {
		return addr
	}
	return from
}

// formatAmount renders a monetary value with a stable representation
// for use in identity keys.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
