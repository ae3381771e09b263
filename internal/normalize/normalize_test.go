package normalize

import (
	"math"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"García", "garcia"},
		{"GARCÍA", "garcia"},
		{"O'Brien", "obrien"},
		{"Müller-Lüdenscheidt", "mullerludenscheidt"},
		{"  van  der Berg ", "van der berg"},
		{"Ñúñez", "nunez"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Key(tt.input); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"garcia", "garcia", 0},
		{"garcia", "garzon", 3},
		{"smith", "smyth", 1},
	}

	for _, tt := range tests {
		if got := Levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 0},
		{"smith", "smith", 0},
		{"smith", "smyth", 0.2},
		{"garcia", "garzon", 0.5},
	}

	for _, tt := range tests {
		got := Distance(tt.a, tt.b)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Distance(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
		}
		if sim := Similarity(tt.a, tt.b); math.Abs(sim-(1-tt.want)) > 1e-9 {
			t.Errorf("Similarity(%q, %q) = %f, want %f", tt.a, tt.b, sim, 1-tt.want)
		}
	}
}

func TestSurname(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"de la Cruz", "cruz"},
		{"van Dijk", "dijk"},
		{"Van der Berg", "berg"},
		{"García", "garcia"},
		{"de", "de"},
	}
	for _, tt := range tests {
		if got := Surname(tt.input); got != tt.want {
			t.Errorf("Surname(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
