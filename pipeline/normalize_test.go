package pipeline

import (
	"testing"

	"proplookup/models"
)

func TestNormalize_AddressComposition(t *testing.T) {
	raw := models.Record{
		"displayaddress": "12 Oak Lane",
		"address": map[string]any{
			"area": "Blackrock",
			"town": "Dublin",
		},
		"eircode": "a94 x2r7",
	}
	l := Normalize(raw, models.AgencyHint{}, "0")
	if l.AddressText != "12 Oak Lane, Blackrock, Dublin, a94 x2r7" {
		t.Fatalf("unexpected address %q", l.AddressText)
	}
	if l.EircodeNormalized != "A94X2R7" {
		t.Fatalf("unexpected eircode %q", l.EircodeNormalized)
	}
}

func TestNormalize_EmptyPartsSkipped(t *testing.T) {
	raw := models.Record{
		"house_location": "1 Elm Park",
		"address":        map[string]any{"street": "   ", "town": "Galway"},
	}
	l := Normalize(raw, models.AgencyHint{}, "0")
	if l.AddressText != "1 Elm Park, Galway" {
		t.Fatalf("unexpected address %q", l.AddressText)
	}
}

func TestNormalize_PriceZeroTreatedAsAbsent(t *testing.T) {
	raw := models.Record{"price": float64(0), "house_price": "350000"}
	if l := Normalize(raw, models.AgencyHint{}, "0"); l.PriceText != "350000" {
		t.Fatalf("expected 350000, got %q", l.PriceText)
	}

	raw = models.Record{"price": float64(0)}
	if l := Normalize(raw, models.AgencyHint{}, "0"); l.PriceText != "" {
		t.Fatalf("expected empty price, got %q", l.PriceText)
	}
}

func TestNormalize_SourceDetection(t *testing.T) {
	cases := map[string]string{
		"MyHome Feed":    models.SourceMyHome,
		"Acquaint Sync":  models.SourceAcquaint,
		"acq-feed":       models.SourceAcquaint,
		"Daft API":       models.SourceDaft,
		"WP Listings":    models.SourceWordPress,
		"wordpress-rest": models.SourceWordPress,
	}
	for src, want := range cases {
		l := Normalize(models.Record{"source": src}, models.AgencyHint{}, "0")
		if l.SourceCode != want {
			t.Fatalf("source %q resolved to %q, want %q", src, l.SourceCode, want)
		}
	}
}

func TestNormalize_SourceHintFallback(t *testing.T) {
	raw := models.Record{"house_location": "somewhere"}

	l := Normalize(raw, models.AgencyHint{HasMyHomeKey: true, HasAcquaintPrefix: true}, "0")
	if l.SourceCode != models.SourceMyHome {
		t.Fatalf("myhome hint should win, got %q", l.SourceCode)
	}

	l = Normalize(raw, models.AgencyHint{HasAcquaintPrefix: true}, "0")
	if l.SourceCode != models.SourceAcquaint {
		t.Fatalf("acquaint hint should apply, got %q", l.SourceCode)
	}

	l = Normalize(raw, models.AgencyHint{}, "0")
	if l.SourceCode != models.SourceFindAHome {
		t.Fatalf("expected findahome default, got %q", l.SourceCode)
	}

	// An explicit source field beats any hint.
	l = Normalize(models.Record{"source": "daft"}, models.AgencyHint{HasMyHomeKey: true}, "0")
	if l.SourceCode != models.SourceDaft {
		t.Fatalf("explicit source should beat hint, got %q", l.SourceCode)
	}
}

func TestNormalize_SaleType(t *testing.T) {
	l := Normalize(models.Record{"pricefrequency": "PCM"}, models.AgencyHint{}, "0")
	if l.SaleType != models.SaleTypeToLet {
		t.Fatalf("pcm frequency should mean To Let, got %q", l.SaleType)
	}

	l = Normalize(models.Record{"status": "To Let"}, models.AgencyHint{}, "0")
	if l.SaleType != models.SaleTypeToLet {
		t.Fatalf("let status should mean To Let, got %q", l.SaleType)
	}

	l = Normalize(models.Record{"PropertyStatus": "For Rent"}, models.AgencyHint{}, "0")
	if l.SaleType != models.SaleTypeToLet {
		t.Fatalf("rent property status should mean To Let, got %q", l.SaleType)
	}

	l = Normalize(models.Record{"status": "For Sale"}, models.AgencyHint{}, "0")
	if l.SaleType != models.SaleTypeForSale {
		t.Fatalf("expected For Sale, got %q", l.SaleType)
	}
}

func TestNormalize_DisplayStatus(t *testing.T) {
	l := Normalize(models.Record{"house_extra_info_2": "SOLD last month"}, models.AgencyHint{}, "0")
	if l.DisplayStatus != models.StatusOffline {
		t.Fatalf("sold info should be Offline, got %q", l.DisplayStatus)
	}

	l = Normalize(models.Record{"status": "Live on site"}, models.AgencyHint{}, "0")
	if l.DisplayStatus != models.StatusAvailable {
		t.Fatalf("live status should be Available, got %q", l.DisplayStatus)
	}

	l = Normalize(models.Record{"status": "Under Offer"}, models.AgencyHint{}, "0")
	if l.DisplayStatus != "Under Offer" {
		t.Fatalf("raw status should pass through, got %q", l.DisplayStatus)
	}

	l = Normalize(models.Record{}, models.AgencyHint{}, "0")
	if l.DisplayStatus != models.StatusAvailable {
		t.Fatalf("expected Available fallback, got %q", l.DisplayStatus)
	}

	// Offline wins over a live status.
	l = Normalize(models.Record{
		"status":             "Live",
		"house_extra_info_2": "archived",
	}, models.AgencyHint{}, "0")
	if l.DisplayStatus != models.StatusOffline {
		t.Fatalf("Offline should win, got %q", l.DisplayStatus)
	}
}

func TestNormalize_Photos(t *testing.T) {
	raw := models.Record{
		"photos": []any{"//cdn.x/a.jpg", "http://cdn.x/thumbnail_b.jpg", "not-a-url"},
	}
	l := Normalize(raw, models.AgencyHint{}, "0")
	if len(l.PhotoURLs) != 1 || l.PhotoURLs[0] != "https://cdn.x/a.jpg" {
		t.Fatalf("unexpected photos %v", l.PhotoURLs)
	}
	if l.PictureCount != 1 {
		t.Fatalf("expected picture count 1, got %d", l.PictureCount)
	}
}

func TestNormalize_PhotoDedupAndWrappers(t *testing.T) {
	raw := models.Record{
		"MainPhoto": "https://cdn.x/1.jpg",
		"photos": []any{
			"'https://cdn.x/1.jpg'",
			map[string]any{"url": "https://cdn.x/2_ipad.jpg", "web": "https://cdn.x/3.jpg"},
		},
	}
	l := Normalize(raw, models.AgencyHint{}, "0")
	if len(l.PhotoURLs) != 2 {
		t.Fatalf("expected 2 photos, got %v", l.PhotoURLs)
	}
	if l.PhotoURLs[0] != "https://cdn.x/1.jpg" || l.PhotoURLs[1] != "https://cdn.x/3.jpg" {
		t.Fatalf("unexpected photos %v", l.PhotoURLs)
	}
}

func TestNormalize_ZeroCountsBlanked(t *testing.T) {
	raw := models.Record{
		"bedrooms":  float64(0),
		"bathrooms": "2",
		"floorarea": "0",
	}
	l := Normalize(raw, models.AgencyHint{}, "0")
	if l.BedroomsText != "" {
		t.Fatalf("zero bedrooms should be blank, got %q", l.BedroomsText)
	}
	if l.BathroomsText != "2" {
		t.Fatalf("expected 2 bathrooms, got %q", l.BathroomsText)
	}
	if l.SquareText != "" {
		t.Fatalf("zero floor area should be blank, got %q", l.SquareText)
	}
}

func TestNormalize_IDFallback(t *testing.T) {
	items := []models.Record{
		{"id": "abc"},
		{"uniquereferencenumber": "ref-9"},
		{"house_location": "no id here"},
	}
	out := NormalizeAll(items, models.AgencyHint{})
	if out[0].ID != "abc" || out[1].ID != "ref-9" || out[2].ID != "2" {
		t.Fatalf("unexpected ids %q %q %q", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestNormalize_XMLTextWrappers(t *testing.T) {
	// Acquaint XML fields arrive as {"#text": ...} wrappers.
	raw := models.Record{
		"displayaddress": map[string]any{"#text": "4 The Green, Naas"},
		"price":          map[string]any{"#text": "295000"},
	}
	l := Normalize(raw, models.AgencyHint{}, "0")
	if l.AddressText != "4 The Green, Naas" {
		t.Fatalf("unexpected address %q", l.AddressText)
	}
	if l.PriceText != "295000" {
		t.Fatalf("unexpected price %q", l.PriceText)
	}
}

func TestNormalize_NeverPanics(t *testing.T) {
	hostile := []models.Record{
		nil,
		{},
		{"address": "not a map"},
		{"photos": float64(7)},
		{"id": []any{"weird"}},
		{"source": float64(42)},
	}
	for i, rec := range hostile {
		l := Normalize(rec, models.AgencyHint{}, "0")
		if l.SourceCode == "" {
			t.Fatalf("record %d: source code must never be empty", i)
		}
	}
}
