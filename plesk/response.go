package plesk

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// frame is an element being decoded.
type frame struct {
	name     string
	children map[string]interface{}
	text     strings.Builder
}

// ParseResponse decodes a raw response packet into a generic tree.  Elements with children become
// maps, leaves become their trimmed text, and sibling elements sharing a name become a slice in
// document order.  Attributes are ignored.  The returned map holds the children of <packet>.
func ParseResponse(raw []byte) (map[string]interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ProtocolParseError{Reason: "empty response", Raw: raw}
	}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var stack []*frame
	var root map[string]interface{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ProtocolParseError{Reason: "malformed xml", Raw: raw, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && t.Name.Local != "packet" {
				return nil, &ProtocolParseError{Reason: "root element is <" + t.Name.Local + ">, expected <packet>", Raw: raw}
			}
			stack = append(stack, &frame{name: t.Name.Local})
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				root = f.children
				if root == nil {
					root = map[string]interface{}{}
				}
				continue
			}
			parent := stack[len(stack)-1]
			if parent.children == nil {
				parent.children = map[string]interface{}{}
			}
			addChild(parent.children, f.name, f.value())
		}
	}
	if root == nil {
		return nil, &ProtocolParseError{Reason: "no <packet> element", Raw: raw}
	}
	return root, nil
}

func (f *frame) value() interface{} {
	if f.children != nil {
		return f.children
	}
	return strings.TrimSpace(f.text.String())
}

// addChild stores v under name, turning repeated names into a slice.  Element values are never
// slices themselves, so a slice already present always means repetition.
func addChild(m map[string]interface{}, name string, v interface{}) {
	existing, ok := m[name]
	if !ok {
		m[name] = v
		return
	}
	if seq, isSeq := existing.([]interface{}); isSeq {
		m[name] = append(seq, v)
		return
	}
	m[name] = []interface{}{existing, v}
}
