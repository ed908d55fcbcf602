package templates

import (
	"testing"

	"metaladmin/pkg/models"
)

func validDimension(key string) models.Dimension {
	return models.Dimension{Key: key, Label: "Side " + key, Min: 10, Max: 500, Unit: "mm"}
}

func pngImage() *Image {
	return &Image{Filename: "shape.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
}

func TestCreateFormRequiresImage(t *testing.T) {
	f := NewCreateForm(models.ServiceRebar)
	f.Code = "R-01"
	f.Label = "Stirrup"
	_ = f.Dimensions.Update(f.Dimensions.Items()[0].Key, func(models.Dimension) models.Dimension {
		return validDimension("a")
	})

	errs := f.Validate()
	if errs["image"] != "is required" {
		t.Fatalf("errors = %v, want image required", errs)
	}

	f.SetImage(pngImage())
	if errs := f.Validate(); errs != nil {
		t.Errorf("valid form rejected: %v", errs)
	}
}

func TestEditFormKeepsExistingImage(t *testing.T) {
	f := NewEditForm(models.ServiceTemplate{
		Kind:       models.ServiceCutting,
		Code:       "C-02",
		Label:      "Disc",
		ImageURL:   "https://cdn.example.com/c-02.png",
		Dimensions: []models.Dimension{validDimension("d")},
		Materials:  []string{"steel"},
	})
	if errs := f.Validate(); errs != nil {
		t.Errorf("edit without new image rejected: %v", errs)
	}
	if got := f.Template().ImageURL; got != "https://cdn.example.com/c-02.png" {
		t.Errorf("image url = %q", got)
	}
}

func TestFormValidationMessages(t *testing.T) {
	f := NewEditForm(models.ServiceTemplate{
		Kind:  models.ServiceBending,
		Code:  "",
		Label: "Channel",
		Dimensions: []models.Dimension{
			validDimension("a"),
			{Key: "a", Label: "Width", Min: 30, Max: 20, Unit: "mm"},
		},
		BendingMaterials: []models.MaterialThickness{
			{Material: "", Thicknesses: []float64{1.5}},
		},
	})
	f.SetImage(&Image{Filename: "x.gif", ContentType: "image/gif", Data: []byte("GIF")})

	errs := f.Validate()
	want := []string{
		"code",
		"image",
		"dimensions[1].max",
		"dimensions[1].key",
		"bendingMaterials[0].material",
	}
	for _, field := range want {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %s in %v", field, errs)
		}
	}
}

func TestCuttingMaterialNeedsName(t *testing.T) {
	f := NewEditForm(models.ServiceTemplate{
		Kind:        models.ServiceCutting,
		Code:        "C-1",
		Label:       "Plate",
		Dimensions:  []models.Dimension{validDimension("w")},
		Materials:   []string{"steel", "  "},
		Thicknesses: []float64{2, 0},
	})

	errs := f.Validate()
	if errs["materials[1]"] != "is required" {
		t.Errorf("materials error = %q", errs["materials[1]"])
	}
	if _, ok := errs["thicknesses[1]"]; !ok {
		t.Errorf("thickness error missing: %v", errs)
	}
}

func TestPrepareDropsForeignArrays(t *testing.T) {
	f := &Form{
		Code:      "R-9",
		Label:     "Hook",
		Materials: NewFieldArray(0, "steel"),
	}
	f.Prepare(models.ServiceRebar, ModeEdit)

	if f.Materials != nil {
		t.Error("cutting materials kept on a rebar form")
	}
	if f.Diameters == nil || f.Dimensions == nil {
		t.Error("rebar arrays not initialised")
	}
	if f.Template().Materials != nil {
		t.Error("template carries foreign fields")
	}
}
