package extract

import (
	"reflect"
	"testing"
)

func TestNumbers(t *testing.T) {
	t.Parallel()

	got := Numbers("5 12 23 44 55 9", 2)
	want := []int{5, 12, 23, 44, 55, 9}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Numbers = %v, want %v", got, want)
	}

	// Longer runs split greedily at the requested width.
	if got := Numbers("2024", 2); !reflect.DeepEqual(got, []int{20, 24}) {
		t.Fatalf("width-2 split = %v", got)
	}
	if got := Numbers("1234567", 3); !reflect.DeepEqual(got, []int{123, 456, 7}) {
		t.Fatalf("width-3 split = %v", got)
	}

	if got := Numbers("no digits", 2); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestWithoutYear(t *testing.T) {
	t.Parallel()

	got := WithoutYear([]int{2024, 5, 12, 2024, 9}, 2024)
	if !reflect.DeepEqual(got, []int{5, 12, 9}) {
		t.Fatalf("WithoutYear = %v", got)
	}
}
