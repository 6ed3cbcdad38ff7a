package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCells(t *testing.T) {
	tests := []struct {
		name    string
		section string
		want    []Cell
	}{
		{
			name:    "name then values",
			section: `<tr><td class="partHead">中山停車場</td><td class="partAll">150</td><td class="partAll">42</td></tr>`,
			want: []Cell{
				{RoleName, "中山停車場"},
				{RoleValue, "150"},
				{RoleValue, "42"},
			},
		},
		{
			name:    "th names and motorcycle values",
			section: `<tr><th class="partHead">中技 B3</th><td class="partMotoAll">120</td></tr>`,
			want: []Cell{
				{RoleName, "中技 B3"},
				{RoleValue, "120"},
			},
		},
		{
			name:    "upper case tags and bare or single quoted class",
			section: `<TD CLASS=partHead>A</TD><Td class='partAll'>1</tD>`,
			want: []Cell{
				{RoleName, "A"},
				{RoleValue, "1"},
			},
		},
		{
			name:    "extra attributes and class lists",
			section: `<td id="n1" class="cell partHead wide" colspan="2">A</td><td style="x" class="num partAll">5</td>`,
			want: []Cell{
				{RoleName, "A"},
				{RoleValue, "5"},
			},
		},
		{
			name:    "nested tags kept raw",
			section: `<td class="partHead">行政大樓<span>(開放訪客)</span></td>`,
			want: []Cell{
				{RoleName, "行政大樓<span>(開放訪客)</span>"},
			},
		},
		{
			name:    "cells without class or with other classes are skipped",
			section: `<td>plain</td><td class="note">x</td><td class="partHead">A</td><td class="">y</td>`,
			want: []Cell{
				{RoleName, "A"},
			},
		},
		{
			name:    "table, thead and title tags are not cells",
			section: `<table class="partHead"><thead class="partHead"><tr class="partAll"><td class="partAll">3</td></tr></thead></table>`,
			want: []Cell{
				{RoleValue, "3"},
			},
		},
		{
			name:    "empty section",
			section: ``,
			want:    []Cell{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCells(tt.section))
		})
	}
}

func TestClassify(t *testing.T) {
	role, ok := classify("partHead")
	assert.True(t, ok)
	assert.Equal(t, RoleName, role)

	role, ok = classify("partMotoAll")
	assert.True(t, ok)
	assert.Equal(t, RoleValue, role)

	_, ok = classify("parthead")
	assert.False(t, ok)
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "name", RoleName.String())
	assert.Equal(t, "value", RoleValue.String())
	assert.Equal(t, "unknown", Role(0).String())
}
