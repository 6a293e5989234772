package matrix_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"github.com/m-mizutani/loom/pkg/matrix"
)

func osAxis(names ...string) model.Axis {
	distros := map[string]string{
		"Linux":   "ubuntu-latest",
		"Windows": "windows-latest",
		"macOS":   "macos-latest",
	}

	axis := model.Axis{Name: model.AxisOS}
	for _, name := range names {
		axis.Variants = append(axis.Variants, model.Variant{
			Name:   name,
			Fields: map[string]string{model.FieldDistro: distros[name]},
		})
	}
	return axis
}

func testAxis() model.Axis {
	return model.Axis{
		Name: model.AxisTest,
		Variants: []model.Variant{
			{
				Name:   "Stable",
				Fields: map[string]string{model.FieldToolchain: "stable"},
			},
			{
				Name: "Stable with all features",
				Fields: map[string]string{
					model.FieldToolchain: "stable",
					model.FieldFlag:      "--all-features",
				},
			},
		},
	}
}

func TestExpand_Cardinality(t *testing.T) {
	tests := []struct {
		name string
		axes []model.Axis
		want int
	}{
		{
			name: "3x2 matrix yields 6 combinations",
			axes: []model.Axis{osAxis("Linux", "Windows", "macOS"), testAxis()},
			want: 6,
		},
		{
			name: "single axis",
			axes: []model.Axis{osAxis("Linux", "Windows", "macOS")},
			want: 3,
		},
		{
			name: "three axes",
			axes: []model.Axis{
				osAxis("Linux", "Windows"),
				testAxis(),
				{Name: "arch", Variants: []model.Variant{{Name: "amd64"}, {Name: "arm64"}}},
			},
			want: 8,
		},
		{
			name: "zero-variant axis yields zero combinations",
			axes: []model.Axis{osAxis("Linux", "Windows", "macOS"), {Name: model.AxisTest}},
			want: 0,
		},
		{
			name: "no axes yields single empty combination",
			axes: nil,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			combos := matrix.Expand(tt.axes)
			gt.Number(t, len(combos)).Equal(tt.want)
			gt.Number(t, matrix.Size(tt.axes)).Equal(tt.want)
		})
	}
}

func TestExpand_Order(t *testing.T) {
	combos := matrix.Expand([]model.Axis{osAxis("Linux", "Windows", "macOS"), testAxis()})
	gt.Number(t, len(combos)).Equal(6)

	// Outer axis major: OS varies slowest, test variant fastest.
	wantOS := []string{"Linux", "Linux", "Windows", "Windows", "macOS", "macOS"}
	wantTest := []string{
		"Stable", "Stable with all features",
		"Stable", "Stable with all features",
		"Stable", "Stable with all features",
	}

	for i, c := range combos {
		osVariant, ok := c.VariantOf(model.AxisOS)
		gt.True(t, ok)
		gt.Value(t, osVariant.Name).Equal(wantOS[i])

		testVariant, ok := c.VariantOf(model.AxisTest)
		gt.True(t, ok)
		gt.Value(t, testVariant.Name).Equal(wantTest[i])
	}
}

func TestExpand_Deterministic(t *testing.T) {
	axes := []model.Axis{osAxis("Linux", "Windows", "macOS"), testAxis()}

	first := matrix.Expand(axes)
	for i := 0; i < 10; i++ {
		again := matrix.Expand(axes)
		gt.Number(t, len(again)).Equal(len(first))
		for j := range again {
			gt.Value(t, model.NewJobSpec(again[j])).Equal(model.NewJobSpec(first[j]))
		}
	}
}

func TestExpand_Injective(t *testing.T) {
	combos := matrix.Expand([]model.Axis{osAxis("Linux", "Windows", "macOS"), testAxis()})

	seen := map[model.JobSpec]struct{}{}
	for _, c := range combos {
		spec := model.NewJobSpec(c)
		if _, dup := seen[spec]; dup {
			t.Errorf("duplicate job spec: %+v", spec)
		}
		seen[spec] = struct{}{}
	}
	gt.Number(t, len(seen)).Equal(6)
}

func TestExpand_JobSpecFields(t *testing.T) {
	combos := matrix.Expand([]model.Axis{osAxis("Linux", "Windows", "macOS"), testAxis()})

	specs := make([]model.JobSpec, 0, len(combos))
	for _, c := range combos {
		specs = append(specs, model.NewJobSpec(c))
	}

	gt.Value(t, specs[0]).Equal(model.JobSpec{
		OS:        "Linux",
		Distro:    "ubuntu-latest",
		Test:      "Stable",
		Toolchain: "stable",
	})
	gt.Value(t, specs[5]).Equal(model.JobSpec{
		OS:        "macOS",
		Distro:    "macos-latest",
		Test:      "Stable with all features",
		Toolchain: "stable",
		ExtraFlag: "--all-features",
	})
}

func TestExpand_DroppedVariantKeepsRemainder(t *testing.T) {
	full := matrix.Expand([]model.Axis{osAxis("Linux", "Windows", "macOS"), testAxis()})
	reduced := matrix.Expand([]model.Axis{osAxis("Linux", "macOS"), testAxis()})

	gt.Number(t, len(full)).Equal(6)
	gt.Number(t, len(reduced)).Equal(4)

	// The surviving combinations are exactly the full ones minus Windows,
	// with no change to any field value.
	var want []model.JobSpec
	for _, c := range full {
		spec := model.NewJobSpec(c)
		if spec.OS != "Windows" {
			want = append(want, spec)
		}
	}

	gt.Number(t, len(want)).Equal(len(reduced))
	for i, c := range reduced {
		gt.Value(t, model.NewJobSpec(c)).Equal(want[i])
	}
}
