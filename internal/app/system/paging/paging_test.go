package paging

import (
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePage(t *testing.T) {
	tests := map[string]int{
		"/x":          1,
		"/x?page=3":   3,
		"/x?page=0":   1,
		"/x?page=-2":  1,
		"/x?page=abc": 1,
	}
	for target, want := range tests {
		if got := ParsePage(httptest.NewRequest("GET", target, nil)); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", target, got, want)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 50); got != 0 {
		t.Errorf("Offset(1) = %d", got)
	}
	if got := Offset(3, 50); got != 100 {
		t.Errorf("Offset(3) = %d", got)
	}
	if got := Offset(0, 50); got != 0 {
		t.Errorf("Offset(0) = %d", got)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int64
		shown int
		want  Window
	}{
		{
			name: "empty",
			page: 1,
			want: Window{Page: 1, TotalPages: 1, PrevPage: 1, NextPage: 1},
		},
		{
			name:  "first of three",
			page:  1,
			total: 25,
			shown: 10,
			want:  Window{Page: 1, TotalPages: 3, Total: 25, RangeStart: 1, RangeEnd: 10, HasNext: true, PrevPage: 1, NextPage: 2},
		},
		{
			name:  "last partial page",
			page:  3,
			total: 25,
			shown: 5,
			want:  Window{Page: 3, TotalPages: 3, Total: 25, RangeStart: 21, RangeEnd: 25, HasPrev: true, PrevPage: 2, NextPage: 3},
		},
		{
			name:  "past the end is clamped",
			page:  9,
			total: 25,
			want:  Window{Page: 3, TotalPages: 3, Total: 25, HasPrev: true, PrevPage: 2, NextPage: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.page, 10, tt.total, tt.shown)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compute mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5, 6, 7}

	got, w := Slice(rows, 2, 3)
	if diff := cmp.Diff([]int{4, 5, 6}, got); diff != "" {
		t.Errorf("page 2 (-want +got):\n%s", diff)
	}
	if w.RangeStart != 4 || w.RangeEnd != 6 || !w.HasPrev || !w.HasNext {
		t.Errorf("window = %+v", w)
	}

	got, w = Slice(rows, 3, 3)
	if diff := cmp.Diff([]int{7}, got); diff != "" {
		t.Errorf("page 3 (-want +got):\n%s", diff)
	}
	if w.HasNext {
		t.Error("last page should not have next")
	}

	got, w = Slice([]int{}, 1, 3)
	if len(got) != 0 || w.RangeStart != 0 || w.TotalPages != 1 {
		t.Errorf("empty: rows=%v window=%+v", got, w)
	}
}
