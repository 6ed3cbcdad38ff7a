package parse

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutcparking/parkspace/internal/lot"
)

var capturedAt = time.Date(2026, 3, 2, 7, 30, 0, 0, time.UTC)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name      string
		cells     []Cell
		wantNames []string
		wantTotal []int
		wantAvail []int
	}{
		{
			name:      "total then available",
			cells:     []Cell{{RoleName, "中山停車場"}, {RoleValue, "150"}, {RoleValue, "42"}},
			wantNames: []string{"中山停車場"},
			wantTotal: []int{150},
			wantAvail: []int{42},
		},
		{
			name:      "available only",
			cells:     []Cell{{RoleName, "中技 B3"}, {RoleValue, "120"}},
			wantNames: []string{"中技 B3"},
			wantTotal: []int{0},
			wantAvail: []int{120},
		},
		{
			name:      "header word is not a lot",
			cells:     []Cell{{RoleName, "停車場"}, {RoleValue, "10"}},
			wantNames: []string{},
		},
		{
			name:      "header word with markup is not a lot",
			cells:     []Cell{{RoleName, " <b>停車場</b> "}, {RoleValue, "10"}, {RoleValue, "5"}},
			wantNames: []string{},
		},
		{
			name:      "name without values is dropped",
			cells:     []Cell{{RoleName, "A"}, {RoleName, "B"}, {RoleValue, "3"}, {RoleName, "C"}},
			wantNames: []string{"B"},
			wantTotal: []int{0},
			wantAvail: []int{3},
		},
		{
			name:      "empty name is dropped",
			cells:     []Cell{{RoleName, "<span>(備註)</span>"}, {RoleValue, "3"}},
			wantNames: []string{},
		},
		{
			name:      "non-numeric values are skipped",
			cells:     []Cell{{RoleName, "A"}, {RoleValue, "總車位"}, {RoleValue, "80"}, {RoleValue, "維修中"}, {RoleValue, "12"}},
			wantNames: []string{"A"},
			wantTotal: []int{80},
			wantAvail: []int{12},
		},
		{
			name:      "three values use first and last",
			cells:     []Cell{{RoleName, "A"}, {RoleValue, "100"}, {RoleValue, "60"}, {RoleValue, "40"}},
			wantNames: []string{"A"},
			wantTotal: []int{100},
			wantAvail: []int{40},
		},
		{
			name:      "values before any name are ignored",
			cells:     []Cell{{RoleValue, "9"}, {RoleName, "A"}, {RoleValue, "1"}},
			wantNames: []string{"A"},
			wantTotal: []int{0},
			wantAvail: []int{1},
		},
		{
			name:      "repeated rows are kept",
			cells:     []Cell{{RoleName, "A"}, {RoleValue, "1"}, {RoleName, "A"}, {RoleValue, "2"}},
			wantNames: []string{"A", "A"},
			wantTotal: []int{0, 0},
			wantAvail: []int{1, 2},
		},
		{
			name:      "value with aside",
			cells:     []Cell{{RoleName, "操場地下"}, {RoleValue, "12(預約)"}},
			wantNames: []string{"操場地下"},
			wantTotal: []int{0},
			wantAvail: []int{12},
		},
		{
			name:      "no cells",
			cells:     nil,
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lots := Assemble(tt.cells, lot.Car, capturedAt)
			require.Len(t, lots, len(tt.wantNames))

			for i, l := range lots {
				assert.Equal(t, tt.wantNames[i], l.Name)
				assert.Equal(t, tt.wantTotal[i], l.TotalCapacity, "total of %s", l.Name)
				assert.Equal(t, tt.wantAvail[i], l.AvailableCount, "available of %s", l.Name)
				assert.Equal(t, lot.Car, l.Type)
				assert.Equal(t, capturedAt, l.LastUpdated)
			}
		})
	}
}

func TestAssemble_OneLotPerNamedRow(t *testing.T) {
	for n := 0; n <= 20; n++ {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			var cells []Cell
			for i := 0; i < n; i++ {
				cells = append(cells, Cell{RoleName, fmt.Sprintf("Lot %d", i)})
				for v := 0; v <= i%3; v++ {
					cells = append(cells, Cell{RoleValue, strconv.Itoa(100 - v*10)})
				}
			}

			lots := Assemble(cells, lot.Motorcycle, capturedAt)
			require.Len(t, lots, n)

			for i, l := range lots {
				values := i%3 + 1
				assert.Equal(t, 100-(values-1)*10, l.AvailableCount, "available is the last value")
				if values >= 2 {
					assert.Equal(t, 100, l.TotalCapacity, "total is the first value")
				} else {
					assert.Equal(t, 0, l.TotalCapacity)
				}
			}
		})
	}
}

func TestAssemble_FreshIDs(t *testing.T) {
	cells := []Cell{{RoleName, "A"}, {RoleValue, "1"}}
	first := Assemble(cells, lot.Car, capturedAt)
	second := Assemble(cells, lot.Car, capturedAt)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
}
