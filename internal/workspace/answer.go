package workspace

import (
	"fmt"
	"strings"
)

// Citation points at a page of one of the bundled documents.
type Citation struct {
	Text   string
	Source string
	Page   int
}

// Label is the text shown in the source list.
func (c Citation) Label() string {
	return fmt.Sprintf("%s - Page %d", c.Source, c.Page)
}

// Answer is the backend's reply: text plus citations in backend order.
type Answer struct {
	Text      string
	Citations []Citation
}

var escapedNewlines = strings.NewReplacer(`\r\n`, "\n", `\n`, "\n")

// DisplayText converts literal backslash-n sequences into line breaks.
func (a Answer) DisplayText() string {
	return escapedNewlines.Replace(a.Text)
}
