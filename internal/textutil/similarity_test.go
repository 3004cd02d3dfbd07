package textutil

import "testing"

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a, b *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("attack on titan"), 0},
		{"b nil", NewFingerprint("attack on titan"), nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	a := NewFingerprint("one punch man")
	b := NewFingerprint("one punch man")
	if got := CosineSimilarity(a, b); got < 0.999 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityDisjoint(t *testing.T) {
	a := NewFingerprint("attack on titan")
	b := NewFingerprint("spice wolf")
	if got := CosineSimilarity(a, b); got != 0 {
		t.Errorf("CosineSimilarity(disjoint) = %v, want 0", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	got := Similarity("attack on titan season two", "attack on titan")
	if got <= 0 || got >= 1 {
		t.Errorf("Similarity(partial) = %v, want value in (0,1)", got)
	}
}

func TestTokenizeKeepsShortSeasonMarkers(t *testing.T) {
	tokens := Tokenize("Classroom of the Elite S2")
	var found bool
	for _, tok := range tokens {
		if tok == "s2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Tokenize dropped s2 marker: %v", tokens)
	}
}

func TestTokenizeDropsSingleRunes(t *testing.T) {
	for _, tok := range Tokenize("a x 9") {
		t.Fatalf("expected no tokens, got %q", tok)
	}
}
