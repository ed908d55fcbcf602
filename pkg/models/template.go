package models

import "fmt"

// ServiceKind names a fabrication service.
type ServiceKind string

const (
	ServiceRebar   ServiceKind = "rebar"
	ServiceBending ServiceKind = "bending"
	ServiceCutting ServiceKind = "cutting"
)

// ServiceKinds lists every fabrication service in display order.
var ServiceKinds = []ServiceKind{ServiceRebar, ServiceCutting, ServiceBending}

// ParseServiceKind validates a kind taken from a path or payload.
func ParseServiceKind(s string) (ServiceKind, error) {
	for _, k := range ServiceKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown service kind %q", s)
}

// Dimension is a named dimensional constraint of a shape template.
type Dimension struct {
	Key   string  `json:"key" validate:"required"`
	Label string  `json:"label" validate:"required"`
	Min   float64 `json:"min" validate:"gte=0"`
	Max   float64 `json:"max" validate:"gte=0"`
	Unit  string  `json:"unit" validate:"required"`
}

// MaterialThickness pairs a bending material with the thicknesses it
// supports.
type MaterialThickness struct {
	Material    string    `json:"material" validate:"required"`
	Thicknesses []float64 `json:"thicknesses" validate:"min=1,dive,gt=0"`
}

// ServiceTemplate is a fabrication shape definition. The material fields that
// apply depend on Kind: rebar uses Diameters, cutting uses Thicknesses and
// Materials, bending uses BendingMaterials.
type ServiceTemplate struct {
	Kind             ServiceKind         `json:"kind"`
	Code             string              `json:"code"`
	Label            string              `json:"label"`
	ImageURL         string              `json:"imageUrl,omitempty"`
	Dimensions       []Dimension         `json:"dimensions"`
	Diameters        []float64           `json:"diameters,omitempty"`
	Thicknesses      []float64           `json:"thicknesses,omitempty"`
	Materials        []string            `json:"materials,omitempty"`
	BendingMaterials []MaterialThickness `json:"bendingMaterials,omitempty"`
}
