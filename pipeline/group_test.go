package pipeline

import (
	"testing"

	"proplookup/models"
)

func TestGroup_ExactKeyMatch(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"house_location": "12 Oak Lane, Co. Dublin", "source": "myhome"},
		{"displayaddress": "Co Dublin, 12 Oak Lane", "source": "acquaint"},
	}, models.AgencyHint{})

	groups := Group(items)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Count() != 2 {
		t.Fatalf("expected 2 variants, got %d", groups[0].Count())
	}
}

func TestGroup_CrossSourceTokenMatch(t *testing.T) {
	// Source A and Source C name the same property differently, no
	// postcode on either side.
	items := NormalizeAll([]models.Record{
		{"house_location": "12 Oak Lane, Co. Dublin", "source": "acquaint"},
		{"displayaddress": "12 Oak Lane, Dublin", "source": "daft"},
	}, models.AgencyHint{})

	groups := Group(items)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Count() != 2 {
		t.Fatalf("expected 2 variants, got %d", g.Count())
	}
	if len(g.SourceList) != 2 || !g.HasSource(models.SourceAcquaint) || !g.HasSource(models.SourceDaft) {
		t.Fatalf("unexpected source list %v", g.SourceList)
	}
}

func TestGroup_TokenSimilarityAcrossDifferentKeys(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"house_location": "12 Oak Lane, Blackrock, Dublin", "source": "myhome"},
		{"displayaddress": "12 Oak Lane, Dublin", "source": "daft"},
	}, models.AgencyHint{})

	if items[0].AddressKey == items[1].AddressKey {
		t.Fatalf("test requires distinct fingerprints")
	}
	groups := Group(items)
	if len(groups) != 1 {
		t.Fatalf("expected token similarity to merge, got %d groups", len(groups))
	}
}

func TestGroup_PostcodeBeatsDisjointTokens(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"house_location": "The Willows, Maynooth", "eircode": "W23 P6F8", "source": "myhome"},
		{"house_location": "Unit 4 Riverside Business Park", "eircode": "w23p6f8", "source": "daft"},
	}, models.AgencyHint{})

	groups := Group(items)
	if len(groups) != 1 {
		t.Fatalf("postcode match should merge disjoint addresses, got %d groups", len(groups))
	}
}

func TestGroup_SubstringContainment(t *testing.T) {
	items := []models.NormalizedListing{
		{ID: "a", AddressText: "Rose Cottage Ballina", AddressKey: "x1", SourceCode: models.SourceMyHome},
		{ID: "b", AddressText: "Rose Cottage", AddressKey: "x2", SourceCode: models.SourceDaft},
	}
	// Token sets are empty here, so only the substring rule can fire.
	groups := Group(items)
	if len(groups) != 1 {
		t.Fatalf("expected substring containment to merge, got %d groups", len(groups))
	}
}

func TestGroup_OrderingStable(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"house_location": "1 Elm Park, Cork", "source": "myhome"},
		{"house_location": "42 Birch Grove, Sligo", "source": "daft"},
		{"house_location": "1 Elm Park, Cork", "source": "acquaint"},
	}, models.AgencyHint{})

	groups := Group(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Variants[0].AddressText != "1 Elm Park, Cork" {
		t.Fatalf("group order should follow first encounter, got %q first", groups[0].Variants[0].AddressText)
	}
	if groups[0].SourceList[0] != models.SourceMyHome || groups[0].SourceList[1] != models.SourceAcquaint {
		t.Fatalf("source list should keep insertion order, got %v", groups[0].SourceList)
	}
}

func TestGroup_DuplicateSourceCollapsed(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"house_location": "9 Quay Street, Galway", "source": "myhome"},
		{"house_location": "9 Quay Street, Galway", "source": "myhome"},
	}, models.AgencyHint{})

	groups := Group(items)
	if len(groups) != 1 || len(groups[0].SourceList) != 1 {
		t.Fatalf("duplicate source should collapse, got %+v", groups)
	}
	if groups[0].Count() != 2 {
		t.Fatalf("both variants should be kept, got %d", groups[0].Count())
	}
}

func TestGroup_EmptyAddressSingleton(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"id": "a"},
		{"id": "b"},
		{"house_location": "5 Main Street, Tralee"},
	}, models.AgencyHint{})

	groups := Group(items)
	if len(groups) != 3 {
		t.Fatalf("empty addresses must not merge, got %d groups", len(groups))
	}
}

func TestAnnotate_SingletonGroups(t *testing.T) {
	items := NormalizeAll([]models.Record{
		{"house_location": "12 Oak Lane, Co. Dublin", "source": "myhome"},
		{"displayaddress": "12 Oak Lane, Dublin", "source": "daft"},
	}, models.AgencyHint{})

	rows := Annotate(items)
	if len(rows) != 2 {
		t.Fatalf("live mode must not merge, got %d rows", len(rows))
	}
	for i, row := range rows {
		if len(row.SourceList) != 1 {
			t.Fatalf("row %d: expected single-element source list, got %v", i, row.SourceList)
		}
	}
}
