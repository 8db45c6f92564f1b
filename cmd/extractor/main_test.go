package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medkb/billing-kb/internal/domain/entities"
)

func TestSelectPages(t *testing.T) {
	pages := []entities.Page{
		{PageNumber: 1, Text: "one"},
		{PageNumber: 2, Text: "two"},
		{PageNumber: 3, Text: "three"},
		{PageNumber: 4, Text: "four"},
	}

	tests := []struct {
		name  string
		start int
		end   int
		want  []int
	}{
		{"unbounded", 0, 0, []int{1, 2, 3, 4}},
		{"start only", 3, 0, []int{3, 4}},
		{"end only", 0, 2, []int{1, 2}},
		{"inclusive range", 2, 3, []int{2, 3}},
		{"single page", 2, 2, []int{2}},
		{"empty range", 5, 6, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectPages(pages, tt.start, tt.end)
			numbers := make([]int, 0, len(got))
			for _, page := range got {
				numbers = append(numbers, page.PageNumber)
			}
			assert.Equal(t, tt.want, numbers)
		})
	}
}
