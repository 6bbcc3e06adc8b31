package colour

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRankAndPad(t *testing.T) {
	a := Cluster{Centroid: Point{R: 1}, Count: 10}
	b := Cluster{Centroid: Point{R: 2}, Count: 30}
	c := Cluster{Centroid: Point{R: 3}, Count: 20}
	d := Cluster{Centroid: Point{R: 4}, Count: 20}
	empty := Cluster{Centroid: Point{R: 5}}

	tests := []struct {
		name     string
		clusters []Cluster
		topN     int
		want     []Cluster
	}{
		{
			name:     "sorts descending",
			clusters: []Cluster{a, b, c},
			topN:     3,
			want:     []Cluster{b, c, a},
		},
		{
			name:     "truncates",
			clusters: []Cluster{a, b, c},
			topN:     1,
			want:     []Cluster{b},
		},
		{
			name:     "ties keep input order",
			clusters: []Cluster{d, a, c},
			topN:     2,
			want:     []Cluster{d, c},
		},
		{
			name:     "pads with primary",
			clusters: []Cluster{a, b},
			topN:     4,
			want:     []Cluster{b, a, b, b},
		},
		{
			name:     "empty clusters never selected",
			clusters: []Cluster{empty, a, empty},
			topN:     3,
			want:     []Cluster{a, a, a},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RankAndPad(tt.clusters, tt.topN)
			if err != nil {
				t.Fatalf("RankAndPad() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RankAndPad() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRankAndPadDoesNotMutateInput(t *testing.T) {
	in := []Cluster{{Count: 1}, {Count: 5}}
	if _, err := RankAndPad(in, 2); err != nil {
		t.Fatalf("RankAndPad() error = %v", err)
	}
	if in[0].Count != 1 || in[1].Count != 5 {
		t.Errorf("input reordered: %+v", in)
	}
}

func TestRankAndPadErrors(t *testing.T) {
	if _, err := RankAndPad([]Cluster{{Count: 1}}, 0); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("RankAndPad(topN=0) error = %v, want ErrInvalidOption", err)
	}
	if _, err := RankAndPad([]Cluster{{Count: 1}}, 1<<60); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("RankAndPad(topN=1<<60) error = %v, want ErrInvalidOption", err)
	}
	if _, err := RankAndPad([]Cluster{{}, {}}, 2); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("RankAndPad(all empty) error = %v, want ErrEmptyInput", err)
	}
}
