package report

import (
	"bytes"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
)

// Document is a report as seen by the extraction strategies: the element
// tree when the report parsed, and its flattened text content.
type Document struct {
	root *etree.Element
	text string
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Parse reads a report. UTF-16 reports with a byte-order mark and reports
// declaring a non-UTF-8 encoding are transcoded first. A malformed report,
// including one with content after the root element, yields an empty
// Document and ok=false; it is not an error.
func Parse(data []byte) (*Document, bool) {
	data, transcoded, err := toUTF8(data)
	if err != nil {
		return &Document{}, false
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		// the declaration still names the source encoding after transcoding
		if transcoded {
			return input, nil
		}
		return charset.NewReaderLabel(label, input)
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return &Document{}, false
	}
	if !singleRoot(doc) {
		return &Document{}, false
	}
	root := doc.Root()
	return &Document{root: root, text: flatten(root)}, true
}

func toUTF8(data []byte) ([]byte, bool, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], false, nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		return out, true, err
	}
	return data, false, nil
}

// singleRoot reports whether the document has exactly one top-level element
// and no top-level text besides whitespace.
func singleRoot(doc *etree.Document) bool {
	elements := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			elements++
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return false
			}
		}
	}
	return elements == 1
}

// Text returns the whitespace-joined text fragments of the report.
func (d *Document) Text() string {
	return d.text
}

// Structured reports whether the element tree is available.
func (d *Document) Structured() bool {
	return d.root != nil
}

// find returns the first descendant with the given tag in document order.
func (d *Document) find(tag string) *etree.Element {
	if d.root == nil {
		return nil
	}
	return firstDescendant(d.root, tag)
}

func firstDescendant(el *etree.Element, tag string) *etree.Element {
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
		if found := firstDescendant(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func flatten(root *etree.Element) string {
	var fragments []string
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				if s := strings.TrimSpace(t.Data); s != "" {
					fragments = append(fragments, s)
				}
			case *etree.Element:
				walk(t)
			}
		}
	}
	walk(root)
	return strings.Join(fragments, " ")
}
