package arith

import "testing"

func TestAdd(t *testing.T) {
	if got := Add(1, 2); got != 3 {
		t.Errorf("Add(1, 2) = %v, want 3", got)
	}
	if got := Add(0, 0); got != 0 {
		t.Errorf("Add(0, 0) = %v, want 0", got)
	}
	if got := Add(-1, 1); got != 0 {
		t.Errorf("Add(-1, 1) = %v, want 0", got)
	}
}

func TestMultiply(t *testing.T) {
	if got := Multiply(2, 3); got != 6 {
		t.Errorf("Multiply(2, 3) = %v, want 6", got)
	}
	if got := Multiply(0, 5); got != 0 {
		t.Errorf("Multiply(0, 5) = %v, want 0", got)
	}
}

func TestLiteralExpressions(t *testing.T) {
	if got := Add(1, 1); got != 2 {
		t.Errorf("1 + 1 = %v, want 2", got)
	}
	if got := Subtract(5, 3); got != 2 {
		t.Errorf("5 - 3 = %v, want 2", got)
	}
	if got := Multiply(2, 3); got != 6 {
		t.Errorf("2 * 3 = %v, want 6", got)
	}
	got, err := Divide(10, 2)
	if err != nil {
		t.Fatalf("10 / 2: unexpected error: %v", err)
	}
	if got != 5 {
		t.Errorf("10 / 2 = %v (%T), want int 5", got, got)
	}
}
