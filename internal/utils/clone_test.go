package utils

import "testing"

func TestClonePtr(t *testing.T) {
	if ClonePtr[int](nil) != nil {
		t.Fatalf("nil pointer must stay nil")
	}
	v := 3
	c := ClonePtr(&v)
	*c = 4
	if v != 3 {
		t.Fatalf("clone shares storage with source: got %d", v)
	}
}
