// Package templates holds the create and edit forms of fabrication service
// templates and decides which API calls an edit needs.
package templates

import (
	"fmt"
	"strings"

	"metaladmin/internal/forms"
	"metaladmin/pkg/models"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ImageTypes are the accepted template image content types.
var ImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Image is a newly selected template image.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Form is the editable state of one service template.
type Form struct {
	Kind     models.ServiceKind `json:"kind"`
	Mode     Mode               `json:"mode"`
	Code     string             `json:"code" validate:"required,max=40"`
	Label    string             `json:"label" validate:"required,max=120"`
	ImageURL string             `json:"imageUrl,omitempty"`

	Dimensions       *FieldArray[models.Dimension]         `json:"dimensions"`
	Diameters        *FieldArray[float64]                  `json:"diameters,omitempty"`
	Thicknesses      *FieldArray[float64]                  `json:"thicknesses,omitempty"`
	Materials        *FieldArray[string]                   `json:"materials,omitempty"`
	BendingMaterials *FieldArray[models.MaterialThickness] `json:"bendingMaterials,omitempty"`

	image *Image
}

// NewCreateForm starts an empty form with one blank dimension row.
func NewCreateForm(kind models.ServiceKind) *Form {
	f := &Form{
		Kind:       kind,
		Mode:       ModeCreate,
		Dimensions: NewFieldArray(1, models.Dimension{}),
	}
	f.normalize()
	return f
}

// NewEditForm loads t into a form.
func NewEditForm(t models.ServiceTemplate) *Form {
	f := &Form{
		Kind:             t.Kind,
		Mode:             ModeEdit,
		Code:             t.Code,
		Label:            t.Label,
		ImageURL:         t.ImageURL,
		Dimensions:       NewFieldArray(1, t.Dimensions...),
		Diameters:        NewFieldArray(0, t.Diameters...),
		Thicknesses:      NewFieldArray(0, t.Thicknesses...),
		Materials:        NewFieldArray(0, t.Materials...),
		BendingMaterials: NewFieldArray(0, t.BendingMaterials...),
	}
	f.normalize()
	return f
}

// Prepare restores invariants of a form decoded from a request body.
func (f *Form) Prepare(kind models.ServiceKind, mode Mode) {
	f.Kind = kind
	f.Mode = mode
	f.normalize()
}

// normalize makes every array of the form's kind non-nil and drops the
// arrays that do not belong to it.
func (f *Form) normalize() {
	f.Code = strings.TrimSpace(f.Code)
	f.Label = strings.TrimSpace(f.Label)

	if f.Dimensions == nil {
		f.Dimensions = NewFieldArray[models.Dimension](1)
	}
	f.Dimensions.minLen = 1

	switch f.Kind {
	case models.ServiceRebar:
		if f.Diameters == nil {
			f.Diameters = NewFieldArray[float64](0)
		}
	case models.ServiceCutting:
		if f.Thicknesses == nil {
			f.Thicknesses = NewFieldArray[float64](0)
		}
		if f.Materials == nil {
			f.Materials = NewFieldArray[string](0)
		}
	case models.ServiceBending:
		if f.BendingMaterials == nil {
			f.BendingMaterials = NewFieldArray[models.MaterialThickness](0)
		}
	}

	if f.Kind != models.ServiceRebar {
		f.Diameters = nil
	}
	if f.Kind != models.ServiceCutting {
		f.Thicknesses = nil
		f.Materials = nil
	}
	if f.Kind != models.ServiceBending {
		f.BendingMaterials = nil
	}
}

// SetImage attaches a newly selected image.
func (f *Form) SetImage(img *Image) { f.image = img }

func (f *Form) Image() *Image { return f.image }

// Validate returns the inline errors of the form, or nil.
func (f *Form) Validate() forms.FieldErrors {
	errs := forms.FieldErrors{}
	errs.Merge("", forms.Validate(f))

	switch {
	case f.image != nil:
		if !ImageTypes[strings.ToLower(f.image.ContentType)] {
			errs.Add("image", "must be a PNG, JPEG or WebP image")
		} else if len(f.image.Data) == 0 {
			errs.Add("image", "is empty")
		}
	case f.Mode == ModeCreate:
		errs.Add("image", "is required")
	}

	if f.Dimensions.Len() == 0 {
		errs.Add("dimensions", "needs at least 1 item(s)")
	}
	keys := map[string]int{}
	for i, d := range f.Dimensions.Values() {
		prefix := fmt.Sprintf("dimensions[%d]", i)
		errs.Merge(prefix, forms.Validate(d))
		if k := strings.TrimSpace(d.Key); k != "" {
			if first, dup := keys[k]; dup {
				errs.Add(prefix+".key", fmt.Sprintf("duplicates dimensions[%d]", first))
			} else {
				keys[k] = i
			}
		}
	}

	switch f.Kind {
	case models.ServiceRebar:
		for i, v := range f.Diameters.Values() {
			if v <= 0 {
				errs.Add(fmt.Sprintf("diameters[%d]", i), "must be greater than 0")
			}
		}
	case models.ServiceCutting:
		for i, v := range f.Thicknesses.Values() {
			if v <= 0 {
				errs.Add(fmt.Sprintf("thicknesses[%d]", i), "must be greater than 0")
			}
		}
		for i, m := range f.Materials.Values() {
			if strings.TrimSpace(m) == "" {
				errs.Add(fmt.Sprintf("materials[%d]", i), "is required")
			}
		}
	case models.ServiceBending:
		for i, m := range f.BendingMaterials.Values() {
			errs.Merge(fmt.Sprintf("bendingMaterials[%d]", i), forms.Validate(m))
		}
	default:
		errs.Add("kind", "must be one of: rebar cutting bending")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Template returns the template the form describes.
func (f *Form) Template() models.ServiceTemplate {
	t := models.ServiceTemplate{
		Kind:       f.Kind,
		Code:       f.Code,
		Label:      f.Label,
		ImageURL:   f.ImageURL,
		Dimensions: f.Dimensions.Values(),
	}
	switch f.Kind {
	case models.ServiceRebar:
		t.Diameters = f.Diameters.Values()
	case models.ServiceCutting:
		t.Thicknesses = f.Thicknesses.Values()
		t.Materials = trimAll(f.Materials.Values())
	case models.ServiceBending:
		t.BendingMaterials = f.BendingMaterials.Values()
	}
	return t
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
