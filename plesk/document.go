package plesk

import (
	"bytes"
	"encoding/xml"
)

// Node is one element of a command document.  A node carries either text or children, never both.
type Node struct {
	Name     string
	Text     string
	Children []*Node
}

// NewNode creates a text element, pass "" for a container or empty selector.
func NewNode(name, text string) *Node {
	return &Node{Name: name, Text: text}
}

// Append adds c as the last child and returns it.
func (n *Node) Append(c *Node) *Node {
	n.Children = append(n.Children, c)
	return c
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find walks a path of child names below n.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, p := range path {
		if cur = cur.Child(p); cur == nil {
			return nil
		}
	}
	return cur
}

// ensure returns the node at path below n, creating missing elements on the way.
func (n *Node) ensure(path []string) *Node {
	cur := n
	for _, p := range path {
		next := cur.Child(p)
		if next == nil {
			next = cur.Append(NewNode(p, ""))
		}
		cur = next
	}
	return cur
}

func (n *Node) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start = xml.StartElement{Name: xml.Name{Local: n.Name}}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if len(n.Children) == 0 && n.Text != "" {
		if err := e.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: c.Name}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// Document is a command packet addressed to exactly one entity and operation:
//
//	packet > entity > operation > ...
type Document struct {
	Root *Node
}

// NewDocument creates the packet skeleton and returns the document with its operation node.
func NewDocument(entity, operation string) (*Document, *Node) {
	root := NewNode("packet", "")
	op := root.Append(NewNode(entity, "")).Append(NewNode(operation, ""))
	return &Document{Root: root}, op
}

// Entity is the name of the addressed entity node.
func (d *Document) Entity() string {
	if len(d.Root.Children) == 0 {
		return ""
	}
	return d.Root.Children[0].Name
}

// Operation is the operation node below the entity.
func (d *Document) Operation() *Node {
	if len(d.Root.Children) == 0 || len(d.Root.Children[0].Children) == 0 {
		return nil
	}
	return d.Root.Children[0].Children[0]
}

// Find walks a path below the operation node.
func (d *Document) Find(path ...string) *Node {
	op := d.Operation()
	if op == nil {
		return nil
	}
	return op.Find(path...)
}

// Bytes serializes the document with an XML declaration, indented the way the panel echoes it.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d.Root); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (d *Document) String() string {
	b, err := d.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}
