package handlers

import (
	"math"
	"testing"
)

func TestAverageRatingEmpty(t *testing.T) {
	if got := averageRating(nil); got != 0 {
		t.Fatalf("expected 0 for no reviews, got %v", got)
	}
	if got := averageRating([]float64{}); got != 0 {
		t.Fatalf("expected 0 for empty slice, got %v", got)
	}
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    float64
	}{
		{"single", []float64{4}, 4},
		{"uniform", []float64{3, 3, 3}, 3},
		{"mixed", []float64{1, 2, 3, 4, 5}, 3},
		{"fractional", []float64{4, 5}, 4.5},
	}

	for _, tt := range tests {
		if got := averageRating(tt.ratings); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

// Adding one rating r to k reviews with mean m must produce (m*k + r)/(k+1).
func TestAverageRatingIncrementalProperty(t *testing.T) {
	existing := []float64{2, 4, 5, 3, 4, 1, 5}
	k := float64(len(existing))
	m := averageRating(existing)

	newRating := 5.0
	got := averageRating(append(existing, newRating))
	want := (m*k + newRating) / (k + 1)

	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected new mean %v, got %v", want, got)
	}
}
