package feeds

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"proplookup/models"
)

// ParseAcquaintXML converts the Acquaint standard datafeed into records.
// The feed nests rows under data/properties/property; each element tree
// becomes a map, repeated child names become arrays, attributes keep an
// "@" prefix, and an element carrying both attributes and text stores the
// text under "#text". That shape matches what the JSON providers produce
// after decoding, so the normalizer treats all sources uniformly.
func ParseAcquaintXML(data []byte) ([]models.Record, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse acquaint xml: %w", err)
	}

	nodes := xmlquery.Find(doc, "//data/properties/property")
	records := make([]models.Record, 0, len(nodes))
	for _, node := range nodes {
		value := elementValue(node)
		if m, ok := value.(map[string]any); ok {
			records = append(records, models.Record(m))
		}
	}
	return records, nil
}

// elementValue maps one element to its record value: plain text when the
// element is a leaf without attributes, a map otherwise.
func elementValue(node *xmlquery.Node) any {
	fields := map[string]any{}

	for _, attr := range node.Attr {
		fields["@"+attr.Name.Local] = attr.Value
	}

	var text strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			text.WriteString(child.Data)
		case xmlquery.ElementNode:
			appendField(fields, child.Data, elementValue(child))
		}
	}

	trimmed := strings.TrimSpace(text.String())
	if len(fields) == 0 {
		if trimmed == "" {
			return nil
		}
		return trimmed
	}
	if trimmed != "" {
		fields["#text"] = trimmed
	}
	return fields
}

// appendField stores a child value under its name, promoting to a slice
// when the name repeats.
func appendField(fields map[string]any, name string, value any) {
	existing, ok := fields[name]
	if !ok {
		fields[name] = value
		return
	}
	if list, isList := existing.([]any); isList {
		fields[name] = append(list, value)
		return
	}
	fields[name] = []any{existing, value}
}
