package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nutcparking/parkspace/internal/lot"
)

var at = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func sampleLots() []lot.Lot {
	return []lot.Lot{
		lot.New("中山停車場", lot.Car, 150, 42, at),
		lot.New("行政大樓", lot.Car, 80, 0, at),
		lot.New("中技 B3", lot.Motorcycle, 0, 120, at),
		lot.New("中商 B2", lot.Motorcycle, 0, 3, at),
		lot.New("民生校區", lot.Motorcycle, 60, 0, at),
	}
}

func names(lots []lot.Lot) []string {
	out := make([]string, len(lots))
	for i, l := range lots {
		out[i] = l.Name
	}
	return out
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   []string
	}{
		{
			name:   "empty filter",
			filter: NewFilter(),
			want:   []string{"中山停車場", "行政大樓", "中技 B3", "中商 B2", "民生校區"},
		},
		{
			name:   "motorcycle only",
			filter: &Filter{Types: []lot.Type{lot.Motorcycle}},
			want:   []string{"中技 B3", "中商 B2", "民生校區"},
		},
		{
			name:   "both types",
			filter: &Filter{Types: []lot.Type{lot.Car, lot.Motorcycle}},
			want:   []string{"中山停車場", "行政大樓", "中技 B3", "中商 B2", "民生校區"},
		},
		{
			name:   "name substring",
			filter: &Filter{Names: []string{"中"}},
			want:   []string{"中山停車場", "中技 B3", "中商 B2"},
		},
		{
			name:   "name case-insensitive",
			filter: &Filter{Names: []string{"b3"}},
			want:   []string{"中技 B3"},
		},
		{
			name:   "any of several names",
			filter: &Filter{Names: []string{"行政", "民生"}},
			want:   []string{"行政大樓", "民生校區"},
		},
		{
			name:   "with spaces",
			filter: &Filter{MinAvailable: 1},
			want:   []string{"中山停車場", "中技 B3", "中商 B2"},
		},
		{
			name:   "min available",
			filter: &Filter{MinAvailable: 40},
			want:   []string{"中山停車場", "中技 B3"},
		},
		{
			name:   "known capacity",
			filter: &Filter{KnownCapacity: true},
			want:   []string{"中山停車場", "行政大樓", "民生校區"},
		},
		{
			name:   "combined criteria",
			filter: &Filter{Types: []lot.Type{lot.Motorcycle}, Names: []string{"中"}, MinAvailable: 5},
			want:   []string{"中技 B3"},
		},
		{
			name:   "nothing matches",
			filter: &Filter{Names: []string{"不存在"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(sampleLots())
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilter_IsEmpty(t *testing.T) {
	assert.True(t, NewFilter().IsEmpty())
	assert.True(t, (&Filter{}).IsEmpty())
	assert.False(t, (&Filter{Types: []lot.Type{lot.Car}}).IsEmpty())
	assert.False(t, (&Filter{Names: []string{"a"}}).IsEmpty())
	assert.False(t, (&Filter{MinAvailable: 1}).IsEmpty())
	assert.False(t, (&Filter{KnownCapacity: true}).IsEmpty())
}

func TestFilter_String(t *testing.T) {
	assert.Equal(t, "No active filters", NewFilter().String())

	f := &Filter{
		Types:         []lot.Type{lot.Motorcycle},
		Names:         []string{"中技", "中商"},
		MinAvailable:  5,
		KnownCapacity: true,
	}
	assert.Equal(t, "Types: motorcycle | Names: 中技, 中商 | At least 5 available | Known capacity only", f.String())
}

func TestFilter_Clone(t *testing.T) {
	original := &Filter{Types: []lot.Type{lot.Car}, Names: []string{"中山"}, MinAvailable: 2}
	clone := original.Clone()

	assert.Equal(t, original, clone)

	clone.Types[0] = lot.Motorcycle
	clone.Names[0] = "changed"
	clone.MinAvailable = 9

	assert.Equal(t, lot.Car, original.Types[0])
	assert.Equal(t, "中山", original.Names[0])
	assert.Equal(t, 2, original.MinAvailable)
}
