package plesk

import (
	"encoding/base64"
)

// Build turns caller parameters into the command document for op.
//
// Required fields are checked first, no document exists for an invalid call.  Every supplied field is
// resolved to its canonical name and written into each section it is a member of; fields that belong
// to no section of op are dropped.  Sections are attached in table order, lazily unless marked Eager
// or triggered, so the output depends only on (op, params).
func Build(op *Operation, params Params) (*Document, error) {
	t := &op.Table
	if missing, ok := t.checkRequired(params); !ok {
		return nil, &ValidationError{Operation: op.Name, Field: missing}
	}
	values := t.resolve(params)

	doc, opNode := NewDocument(op.Entity, op.Verb)
	for _, s := range t.Sections {
		var children []*Node
		for _, name := range s.Static {
			children = append(children, NewNode(name, ""))
		}
		landed := false
		for _, field := range s.Fields {
			v, ok := values[field]
			if !ok {
				continue
			}
			landed = true
			if s.Base64 {
				v = base64.StdEncoding.EncodeToString([]byte(v))
			}
			children = append(children, s.render(field, v))
		}
		if !landed && !s.Eager && !s.triggered(values) {
			continue
		}
		parent := opNode.ensure(s.Path)
		parent.Children = append(parent.Children, children...)
	}
	return doc, nil
}

func (s *Section) render(field, value string) *Node {
	if s.Placement == Property {
		p := NewNode("property", "")
		p.Append(NewNode("name", field))
		p.Append(NewNode("value", value))
		return p
	}
	return NewNode(field, value)
}

func (s *Section) triggered(values map[string]string) bool {
	for _, name := range s.Triggers {
		if _, ok := values[name]; ok {
			return true
		}
	}
	return false
}
