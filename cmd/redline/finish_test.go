package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParagraphs(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"<w:body/>", []string{"<w:body/>"}},
		{
			`<w:body><w:p><w:r/></w:p><w:p w:rsidR="1"/><w:tbl><w:tr/></w:tbl><w:sectPr/></w:body>`,
			[]string{`<w:body>`, `<w:p><w:r/></w:p>`, `<w:p w:rsidR="1"/>`, `<w:tbl><w:tr/></w:tbl><w:sectPr/></w:body>`},
		},
	}
	for _, tc := range cases {
		got := paragraphs(tc.text)
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("paragraphs(%q) mismatch (-want +got):\n%s", tc.text, diff)
		}
	}
}
