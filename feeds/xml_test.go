package feeds

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func TestParseAcquaintXML_Basic(t *testing.T) {
	data := loadFixture(t, "acquaint_basic.xml")

	records, err := ParseAcquaintXML(data)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first["@id"] != "4101" {
		t.Fatalf("expected @id 4101, got %v", first["@id"])
	}
	if first["uniquereferencenumber"] != "DNGL-4101" {
		t.Fatalf("unexpected reference %v", first["uniquereferencenumber"])
	}
	if first["displayaddress"] != "4 Harbour View, Kinsale, Co. Cork" {
		t.Fatalf("unexpected address %v", first["displayaddress"])
	}

	// price carries a currency attribute, so the amount moves to #text
	price, ok := first["price"].(map[string]any)
	if !ok {
		t.Fatalf("expected price map, got %T", first["price"])
	}
	if price["#text"] != "425000" || price["@currency"] != "EUR" {
		t.Fatalf("unexpected price %v", price)
	}

	pictures, ok := first["pictures"].(map[string]any)
	if !ok {
		t.Fatalf("expected pictures map, got %T", first["pictures"])
	}
	pics, ok := pictures["picture"].([]any)
	if !ok {
		t.Fatalf("expected repeated picture elements as a list, got %T", pictures["picture"])
	}
	if len(pics) != 2 {
		t.Fatalf("expected 2 pictures, got %d", len(pics))
	}
	pic0, _ := pics[0].(map[string]any)
	if pic0["url"] != "https://media.acquaintcrm.co.uk/dngl/4101/1.jpg" {
		t.Fatalf("unexpected first picture %v", pic0)
	}

	// a single picture element stays a map, not a one-element list
	second := records[1]
	secondPics, ok := second["pictures"].(map[string]any)
	if !ok {
		t.Fatalf("expected pictures map, got %T", second["pictures"])
	}
	if _, isMap := secondPics["picture"].(map[string]any); !isMap {
		t.Fatalf("expected single picture as a map, got %T", secondPics["picture"])
	}
}

func TestParseAcquaintXML_Empty(t *testing.T) {
	records, err := ParseAcquaintXML([]byte(`<?xml version="1.0"?><data><properties></properties></data>`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}
