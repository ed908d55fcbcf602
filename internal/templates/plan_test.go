package templates

import (
	"reflect"
	"testing"

	"metaladmin/pkg/models"
)

func cuttingTemplate() models.ServiceTemplate {
	return models.ServiceTemplate{
		Kind:        models.ServiceCutting,
		Code:        "C-10",
		Label:       "Flange",
		ImageURL:    "https://cdn.example.com/c-10.png",
		Dimensions:  []models.Dimension{validDimension("outer"), validDimension("inner")},
		Thicknesses: []float64{2, 4},
		Materials:   []string{"steel", "stainless"},
	}
}

func TestPlanEdit(t *testing.T) {
	tests := []struct {
		name string
		edit func(f *Form)
		want EditPlan
	}{
		{
			name: "nothing changed",
			edit: func(f *Form) {},
			want: EditPlan{},
		},
		{
			name: "label change needs full update",
			edit: func(f *Form) { f.Label = "Flange ring" },
			want: EditPlan{FullUpdate: true},
		},
		{
			name: "image only",
			edit: func(f *Form) { f.SetImage(pngImage()) },
			want: EditPlan{ImageOnly: true},
		},
		{
			name: "dimensions only",
			edit: func(f *Form) {
				key := f.Dimensions.Items()[1].Key
				_ = f.Dimensions.Update(key, func(d models.Dimension) models.Dimension {
					d.Max = 800
					return d
				})
			},
			want: EditPlan{DimensionsOnly: true},
		},
		{
			name: "dimensions and image go together",
			edit: func(f *Form) {
				_ = f.Dimensions.Move(0, 1)
				f.SetImage(pngImage())
			},
			want: EditPlan{FullUpdate: true},
		},
		{
			name: "materials cannot be persisted",
			edit: func(f *Form) {
				f.Materials.Append("aluminium")
				_, _ = f.Thicknesses.Insert(0, 1)
			},
			want: EditPlan{Unpersisted: []string{"thicknesses", "materials"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := cuttingTemplate()
			f := NewEditForm(orig)
			tt.edit(f)

			got := PlanEdit(orig, f)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlanEdit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlanEmpty(t *testing.T) {
	if !(EditPlan{Unpersisted: []string{"materials"}}).Empty() {
		t.Error("a plan with only unpersisted fields sends nothing")
	}
	if (EditPlan{ImageOnly: true}).Empty() {
		t.Error("image-only plan reported empty")
	}
}
