package interpret

import (
	"reflect"
	"testing"
)

func TestFoldStripsAccentsAndLowercases(t *testing.T) {
	cases := map[string]string{
		"Crème Brûlée":     "creme brulee",
		"Jalapeño":         "jalapeno",
		"PEPPERONI":        "pepperoni",
		"already plain":    "already plain",
		"Quattro Formaggi": "quattro formaggi",
	}
	for in, want := range cases {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeSplitsOnSingleSpaces(t *testing.T) {
	got := Normalize("large  Pepperoni")
	// The double space must yield an empty word: modifier words are located
	// by index, so word positions have to match the raw text.
	want := []string{"large", "", "pepperoni"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	got := Normalize("")
	if !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("Normalize(\"\") = %v, want one empty word", got)
	}
}
