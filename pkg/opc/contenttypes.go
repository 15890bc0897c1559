package opc

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/redline/pkg/core"
)

const contentTypesName = "[Content_Types].xml"

// Content types of a WordprocessingML main document part.
var mainContentTypes = []string{
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.template.main+xml",
	"application/vnd.ms-word.document.macroEnabled.main+xml",
	"application/vnd.ms-word.template.macroEnabledTemplate.main+xml",
}

type contentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Defaults  []contentTypeDefault  `xml:"Default"`
	Overrides []contentTypeOverride `xml:"Override"`
}

type contentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type contentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func parseContentTypes(data []byte) (*contentTypes, error) {
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedXML, contentTypesName, err)
	}
	return &ct, nil
}

// lookup returns the content type of an entry: the override for its part name, else the
// default for its extension. Both comparisons ignore case.
func (ct *contentTypes) lookup(name string) string {
	partName := "/" + strings.TrimPrefix(name, "/")
	for _, o := range ct.Overrides {
		if strings.EqualFold(o.PartName, partName) {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

func isMainContentType(ct string) bool {
	// Media type parameters do not change the part's role.
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	for _, m := range mainContentTypes {
		if strings.EqualFold(ct, m) {
			return true
		}
	}
	return false
}
