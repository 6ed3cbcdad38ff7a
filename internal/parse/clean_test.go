package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "中山停車場", "中山停車場"},
		{"surrounding whitespace", "  中技 B3  ", "中技 B3"},
		{"tags", "<span class=\"x\">行政<b>大樓</b></span>", "行政大樓"},
		{"ascii aside", "行政大樓(開放訪客)", "行政大樓"},
		{"full-width aside", "中商 B2（地下室）", "中商 B2"},
		{"aside inside tag", "操場<span>(暫停)</span>地下", "操場地下"},
		{"nbsp entity", "&nbsp;民生校區&nbsp;", "民生校區"},
		{"only noise", "<br/>(備註)", ""},
		{"unclosed bracket kept", "A (B", "A (B"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.raw))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"中山停車場",
		" <b>行政大樓</b>(開放訪客) ",
		"((a)b)",
		"<<b>a>",
		"<(>)x>",
		"&nb<i>sp;X",
		"&&nbsp;nbsp;",
		"（（全形）)",
		"12(預約)",
		"a < b",
	}

	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "Clean(Clean(%q))", in)
	}
}

func TestCleanInt(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"150", 150, true},
		{" 42 ", 42, true},
		{"0", 0, true},
		{"12(預約)", 12, true},
		{"<span>7</span>", 7, true},
		{"１２", 12, true},
		{"", 0, false},
		{"維修中", 0, false},
		{"剩餘車位", 0, false},
		{"-3", 0, false},
		{"1,200", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := CleanInt(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, `<td class="partAll">80</td>`, Normalize("<td\r\n\tclass=\"partAll\">80</td>\n"))
}
