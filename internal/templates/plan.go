package templates

import (
	"reflect"

	"metaladmin/pkg/models"
)

// EditPlan lists the API calls that persist an edit. At most one of
// FullUpdate, ImageOnly and DimensionsOnly is set.
type EditPlan struct {
	FullUpdate     bool `json:"fullUpdate"`
	ImageOnly      bool `json:"imageOnly"`
	DimensionsOnly bool `json:"dimensionsOnly"`

	// Unpersisted names edited fields that no endpoint accepts on update.
	Unpersisted []string `json:"unpersisted,omitempty"`
}

// Empty reports whether there is nothing to send.
func (p EditPlan) Empty() bool {
	return !p.FullUpdate && !p.ImageOnly && !p.DimensionsOnly
}

// PlanEdit compares the form with the template it was loaded from. A code or
// label change needs the full update, which also carries dimensions and the
// image; otherwise the narrower endpoints are used.
func PlanEdit(orig models.ServiceTemplate, f *Form) EditPlan {
	next := f.Template()

	var plan EditPlan
	identity := next.Code != orig.Code || next.Label != orig.Label
	dims := !sameDimensions(orig.Dimensions, next.Dimensions)
	image := f.Image() != nil

	switch {
	case identity, dims && image:
		plan.FullUpdate = true
	case dims:
		plan.DimensionsOnly = true
	case image:
		plan.ImageOnly = true
	}

	switch f.Kind {
	case models.ServiceRebar:
		if !sameFloats(orig.Diameters, next.Diameters) {
			plan.Unpersisted = append(plan.Unpersisted, "diameters")
		}
	case models.ServiceCutting:
		if !sameFloats(orig.Thicknesses, next.Thicknesses) {
			plan.Unpersisted = append(plan.Unpersisted, "thicknesses")
		}
		if !sameStrings(orig.Materials, next.Materials) {
			plan.Unpersisted = append(plan.Unpersisted, "materials")
		}
	case models.ServiceBending:
		if !sameBending(orig.BendingMaterials, next.BendingMaterials) {
			plan.Unpersisted = append(plan.Unpersisted, "bendingMaterials")
		}
	}
	return plan
}

func sameDimensions(a, b []models.Dimension) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameFloats(a, b []float64) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func sameStrings(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func sameBending(a, b []models.MaterialThickness) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
