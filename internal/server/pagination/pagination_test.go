package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_EmptyResultSet(t *testing.T) {
	p := New(0, 1, 50)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 1, p.TotalPages, "empty result set still reports page 1 of 1")
	assert.Equal(t, 0, p.Offset())
}

func TestNew_LastShortPage(t *testing.T) {
	p := New(101, 3, 50)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 100, p.Offset())
	assert.Equal(t, 50, p.Limit())
}

func TestNew_Clamping(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"negative page floors to 1", 10, -5, 50, 1, 50},
		{"zero page floors to 1", 10, 0, 50, 1, 50},
		{"zero size selects default", 10, 1, 0, 1, DefaultPageSize},
		{"negative size clamps to 1", 10, 1, -1, 1, 1},
		{"oversized clamps to max", 10, 1, 1000, 1, MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.total, tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestNew_TotalPagesRoundsUp(t *testing.T) {
	assert.Equal(t, 1, New(50, 1, 50).TotalPages)
	assert.Equal(t, 2, New(51, 1, 50).TotalPages)
	assert.Equal(t, 3, New(101, 1, 50).TotalPages)
}
