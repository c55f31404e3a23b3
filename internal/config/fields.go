package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"logtarget/internal/document"
)

// Fields is a YAML mapping decoded with its key order kept.
type Fields struct {
	doc *document.Document
}

func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	d := document.New()
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return err
		}
		d.Set(node.Content[i].Value, v)
	}
	f.doc = d
	return nil
}

// Document returns a copy of the fields.
func (f Fields) Document() *document.Document {
	if f.doc == nil {
		return document.New()
	}
	return f.doc.Clone()
}

// FieldsOf builds Fields from a document, for callers assembling config in
// code.
func FieldsOf(d *document.Document) Fields {
	return Fields{doc: d.Clone()}
}
