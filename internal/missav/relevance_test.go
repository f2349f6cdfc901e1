package missav_test

import (
	"math"
	"testing"

	"github.com/soramame27/salescope-backend/internal/missav"
)

func TestIsRelevant(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		search    string
		want      bool
	}{
		{"substring match keeps", "Alpha Beta Gamma", "Alpha Beta", true},
		{"no shared tokens excludes", "Zeta Omega", "Alpha Beta", false},
		{"half the tokens keeps", "Alpha Delta", "Alpha Beta", true},
		{"under half excludes", "Alpha Delta", "Alpha Beta Gamma", false},
		{"case insensitive", "ALPHA BETA gamma", "alpha beta", true},
		{"empty candidate excludes", "", "Alpha", false},
		{"empty search excludes", "Alpha", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := missav.IsRelevant(c.candidate, c.search); got != c.want {
				t.Errorf("IsRelevant(%q, %q) = %v, want %v", c.candidate, c.search, got, c.want)
			}
		})
	}
}

func TestRelevance(t *testing.T) {
	t.Run("exact equality scores 1.0", func(t *testing.T) {
		if got := missav.Relevance("Alpha Beta", "alpha beta"); got != 1.0 {
			t.Errorf("got %v, want 1.0", got)
		}
	})

	t.Run("substring containment scores 0.8", func(t *testing.T) {
		if got := missav.Relevance("Alpha Beta Gamma", "Alpha Beta"); got != 0.8 {
			t.Errorf("got %v, want 0.8", got)
		}
	})

	t.Run("otherwise jaccard of token sets", func(t *testing.T) {
		// {alpha, delta} vs {alpha, beta}: intersection 1, union 3.
		got := missav.Relevance("Alpha Delta", "Alpha Beta")
		if math.Abs(got-1.0/3.0) > 1e-9 {
			t.Errorf("got %v, want 1/3", got)
		}
	})

	t.Run("disjoint titles score zero", func(t *testing.T) {
		if got := missav.Relevance("Zeta Omega", "Alpha Beta"); got != 0 {
			t.Errorf("got %v, want 0", got)
		}
	})
}
