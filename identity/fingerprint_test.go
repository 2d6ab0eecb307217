package identity

import (
	"math/rand"
	"testing"
)

func TestBuildKey_OrderIndependent(t *testing.T) {
	parts := []string{"12 Oak Lane", "Blackrock", "Co. Dublin", "A94 X2R7"}
	want := BuildKey(parts...)

	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), parts...)
		rand.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		if got := BuildKey(shuffled...); got != want {
			t.Fatalf("key changed under permutation: %q vs %q", got, want)
		}
	}
}

func TestBuildKey_StripsGenericWords(t *testing.T) {
	a := BuildKey("123 Main St, Co Dublin, Ireland")
	b := BuildKey("123 main st dublin")
	if a != b {
		t.Fatalf("expected equal keys, got %q vs %q", a, b)
	}

	// Whole-word stripping only: "St" is not expanded to "Street".
	if BuildKey("123 Main St") == BuildKey("123 Main Street") {
		t.Fatalf("St and Street should not collide")
	}

	// "co" inside a word must survive.
	if BuildKey("Corbally, Cork") != "corballycork" {
		t.Fatalf("unexpected key %q", BuildKey("Corbally, Cork"))
	}
}

func TestTokenize_DedupAndSort(t *testing.T) {
	tokens := Tokenize("Main Main Road", "road MAIN")
	if len(tokens) != 2 || tokens[0] != "main" || tokens[1] != "road" {
		t.Fatalf("unexpected tokens %v", tokens)
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	if tokens := Tokenize("", "   ", "co county ireland"); len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}
}

func TestNormalizeEircode(t *testing.T) {
	if got := NormalizeEircode(" a94 x2r7 "); got != "A94X2R7" {
		t.Fatalf("unexpected eircode %q", got)
	}
	if got := NormalizeEircode(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestSimilarTokens_Symmetric(t *testing.T) {
	a := Tokenize("12 oak lane blackrock dublin")
	b := Tokenize("12 oak lane dublin with a much longer marketing description attached")
	if SimilarTokens(a, b) != SimilarTokens(b, a) {
		t.Fatalf("predicate is not symmetric")
	}
}

func TestSimilarTokens_Thresholds(t *testing.T) {
	// 4 of 5 tokens shared: ratio 0.8 >= 0.65.
	a := Tokenize("12 oak lane blackrock dublin")
	b := Tokenize("12 oak lane dublin")
	if !SimilarTokens(a, b) {
		t.Fatalf("expected high-overlap match")
	}

	// Long vs short: intersection 4 >= 3 and minRatio 1.0 >= 0.75.
	long := Tokenize("12 oak lane dublin stunning four bed family home with sea views")
	short := Tokenize("12 oak lane dublin")
	if !SimilarTokens(long, short) {
		t.Fatalf("expected long/short match on exact token overlap")
	}

	// Disjoint sets never match.
	if SimilarTokens(Tokenize("1 elm park"), Tokenize("42 birch grove")) {
		t.Fatalf("disjoint sets should not match")
	}

	// Empty sets never match anything.
	if SimilarTokens(nil, short) || SimilarTokens(short, nil) {
		t.Fatalf("empty set must not match")
	}
}
