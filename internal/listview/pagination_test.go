package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, size, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{100, 10, 10},
		{5, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.count, tt.size), "count=%d size=%d", tt.count, tt.size)
	}
}

func TestTotalPages_CeilProperty(t *testing.T) {
	for count := 0; count <= 250; count++ {
		got := TotalPages(count, 10)
		want := (count + 9) / 10
		if want < 1 {
			want = 1
		}
		assert.Equal(t, want, got)
	}
}

func pageNumbers(p Pagination) []int {
	out := make([]int, len(p.Pages))
	for i, b := range p.Pages {
		out[i] = b.Number
	}
	return out
}

func TestBuildPagination_Window(t *testing.T) {
	tests := []struct {
		name           string
		current, total int
		want           []int
	}{
		{"single page", 1, 1, []int{1}},
		{"first of many", 1, 10, []int{1, 2, 3}},
		{"second of many", 2, 10, []int{1, 2, 3, 4}},
		{"middle", 5, 10, []int{3, 4, 5, 6, 7}},
		{"last", 10, 10, []int{8, 9, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := buildPagination(tt.current, tt.total, 10)
			assert.Equal(t, tt.want, pageNumbers(p))
			for _, b := range p.Pages {
				assert.Equal(t, b.Number == tt.current, b.Active)
			}
		})
	}
}

func TestBuildPagination_DisabledButtons(t *testing.T) {
	first := buildPagination(1, 3, 10)
	assert.True(t, first.FirstDisabled)
	assert.True(t, first.PreviousDisabled)
	assert.False(t, first.NextDisabled)
	assert.False(t, first.LastDisabled)

	last := buildPagination(3, 3, 10)
	assert.False(t, last.FirstDisabled)
	assert.True(t, last.NextDisabled)
	assert.True(t, last.LastDisabled)

	only := buildPagination(1, 1, 10)
	assert.True(t, only.FirstDisabled)
	assert.True(t, only.LastDisabled)
}

func TestPageBounds(t *testing.T) {
	start, end := pageBounds(2, 10, 25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	start, end = pageBounds(3, 10, 25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = pageBounds(1, 10, 0)
	assert.Zero(t, start)
	assert.Zero(t, end)
}
