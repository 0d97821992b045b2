package ringbuffer

import (
	"reflect"
	"testing"
)

func TestNewPanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for capacity 0")
		}
	}()
	New[int](0)
}

func TestAppendAndRecentBeforeFull(t *testing.T) {
	rb := New[int](5)
	rb.Append(1)
	rb.Append(2)
	rb.Append(3)

	if rb.Len() != 3 {
		t.Fatalf("expected len 3, got %d", rb.Len())
	}
	got := rb.Recent(3)
	want := []int{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAppendDropsOldestWhenFull(t *testing.T) {
	rb := New[int](3)
	for i := 1; i <= 5; i++ {
		rb.Append(i)
	}

	if rb.Len() != 3 {
		t.Fatalf("expected len 3, got %d", rb.Len())
	}
	got := rb.All()
	want := []int{3, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRecentClampsToLen(t *testing.T) {
	rb := New[int](5)
	rb.Append(10)
	rb.Append(20)

	got := rb.Recent(100)
	want := []int{10, 20}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRecentReturnsFreshSlice(t *testing.T) {
	rb := New[int](3)
	rb.Append(1)

	got := rb.Recent(1)
	got[0] = 999

	if rb.Recent(1)[0] != 1 {
		t.Fatal("Recent must return a copy, not a view into internal storage")
	}
}

func TestClear(t *testing.T) {
	rb := New[int](3)
	rb.Append(1)
	rb.Append(2)
	rb.Clear()

	if rb.Len() != 0 {
		t.Fatalf("expected len 0 after Clear, got %d", rb.Len())
	}
	if len(rb.All()) != 0 {
		t.Fatal("expected no elements after Clear")
	}
}

func TestFull(t *testing.T) {
	rb := New[int](2)
	if rb.Full() {
		t.Fatal("empty buffer must not report full")
	}
	rb.Append(1)
	if rb.Full() {
		t.Fatal("partially filled buffer must not report full")
	}
	rb.Append(2)
	if !rb.Full() {
		t.Fatal("buffer at capacity must report full")
	}
}
