package ran

import "testing"

func TestSlotArrayFindFirstEmpty(t *testing.T) {
	a := NewSlotArray[int](4)
	if got := a.FindFirstEmpty(); got != 0 {
		t.Fatalf("empty array: FindFirstEmpty() = %d, want 0", got)
	}
	a.Insert(0, 10)
	a.Insert(2, 20)
	if got := a.FindFirstEmpty(); got != 1 {
		t.Fatalf("FindFirstEmpty() = %d, want 1", got)
	}
	a.Insert(1, 11)
	a.Insert(3, 33)
	if !a.Full() {
		t.Fatalf("expected array to be full")
	}
	if got := a.FindFirstEmpty(); got != a.Capacity() {
		t.Fatalf("full array: FindFirstEmpty() = %d, want Capacity() = %d", got, a.Capacity())
	}
	a.Remove(1)
	if got := a.FindFirstEmpty(); got != 1 {
		t.Fatalf("after remove: FindFirstEmpty() = %d, want 1", got)
	}
}

func TestSlotArrayForEachSkipsHoles(t *testing.T) {
	a := NewSlotArray[string](5)
	a.Insert(0, "a")
	a.Insert(2, "c")
	a.Insert(4, "e")

	var seen []int
	a.ForEach(func(idx int, value *string) bool {
		seen = append(seen, idx)
		return true
	})
	want := []int{0, 2, 4}
	if len(seen) != len(want) {
		t.Fatalf("ForEach visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("ForEach visited %v, want %v", seen, want)
		}
	}
}

func TestSlotArrayIndexStability(t *testing.T) {
	a := NewSlotArray[int](3)
	a.Insert(1, 100)
	a.Remove(1)
	a.Insert(1, 200)
	v, ok := a.Get(1)
	if !ok || v != 200 {
		t.Fatalf("Get(1) = (%d, %v), want (200, true)", v, ok)
	}
	if a.Contains(0) || a.Contains(2) {
		t.Fatalf("unexpected occupancy of untouched slots")
	}
}
