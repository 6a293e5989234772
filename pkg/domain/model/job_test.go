package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/loom/pkg/domain/model"
)

func TestJobName(t *testing.T) {
	tests := []struct {
		name string
		spec model.JobSpec
		want string
	}{
		{
			name: "both axes",
			spec: model.JobSpec{OS: "Linux", Test: "Stable"},
			want: "test (Linux, Stable)",
		},
		{
			name: "os axis only",
			spec: model.JobSpec{OS: "Linux"},
			want: "test (Linux)",
		},
		{
			name: "test axis only",
			spec: model.JobSpec{Test: "Stable with all features"},
			want: "test (Stable with all features)",
		},
		{
			name: "no matrix",
			spec: model.JobSpec{},
			want: "test",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, model.JobName("test", tt.spec)).Equal(tt.want)
		})
	}
}
