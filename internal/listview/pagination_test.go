package listview

import (
	"reflect"
	"testing"
)

func TestTotalPagesMatchesItemCount(t *testing.T) {
	for _, size := range PageSizes {
		for n := int64(1); n <= 205; n++ {
			total := n
			pages := TotalPages(nil, &total, size)
			want := int((n + int64(size) - 1) / int64(size))
			if pages != want {
				t.Fatalf("n=%d size=%d: got %d pages, want %d", n, size, pages, want)
			}
			last := LastPageCount(n, size)
			if last < 1 || last > size {
				t.Fatalf("n=%d size=%d: last page holds %d items", n, size, last)
			}
			if int64((pages-1)*size+last) != n {
				t.Fatalf("n=%d size=%d: pages do not add up", n, size)
			}
		}
	}
}

func TestTotalPagesPrefersServerValue(t *testing.T) {
	total := int64(100)
	server := 7
	if got := TotalPages(&server, &total, 10); got != 7 {
		t.Errorf("got %d, want 7", got)
	}
	zero := 0
	if got := TotalPages(&zero, nil, 10); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	empty := int64(0)
	if got := TotalPages(nil, &empty, 10); got != 1 {
		t.Errorf("empty list: got %d, want 1", got)
	}
}

func buttonLabels(buttons []PageButton) []int {
	out := make([]int, len(buttons))
	for i, b := range buttons {
		if b.Ellipsis {
			out[i] = -1
			continue
		}
		out[i] = b.Page
	}
	return out
}

func TestPageButtons(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"few pages", 2, 5, []int{1, 2, 3, 4, 5}},
		{"exactly seven", 7, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{"near start", 1, 10, []int{1, 2, 3, 4, 5, -1, 10}},
		{"fourth page", 4, 10, []int{1, 2, 3, 4, 5, -1, 10}},
		{"near end", 8, 10, []int{1, -1, 6, 7, 8, 9, 10}},
		{"last page", 10, 10, []int{1, -1, 6, 7, 8, 9, 10}},
		{"middle", 6, 12, []int{1, -1, 5, 6, 7, -1, 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buttonLabels(PageButtons(tt.current, tt.total))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PageButtons(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
			}
		})
	}
}

func TestPageButtonsMarksCurrent(t *testing.T) {
	for _, b := range PageButtons(3, 10) {
		if b.Current != (b.Page == 3 && !b.Ellipsis) {
			t.Errorf("button %+v has wrong current flag", b)
		}
	}
}

func TestNormalizePageSize(t *testing.T) {
	tests := map[int]int{
		8:   8,
		50:  50,
		0:   DefaultPageSize,
		15:  DefaultPageSize,
		-10: DefaultPageSize,
	}
	for in, want := range tests {
		if got := NormalizePageSize(in); got != want {
			t.Errorf("NormalizePageSize(%d) = %d, want %d", in, got, want)
		}
	}
}
