package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Filter
		want Filter
	}{
		{"zero value", Filter{}, Filter{Page: 1, PageSize: 20, OrderDir: "desc"}},
		{"oversized page", Filter{Page: 3, PageSize: 500, OrderDir: "asc"}, Filter{Page: 3, PageSize: 100, OrderDir: "asc"}},
		{"unknown direction", Filter{Page: 2, PageSize: 10, OrderDir: "sideways"}, Filter{Page: 2, PageSize: 10, OrderDir: "desc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
	assert.Equal(t, 40, Filter{Page: 3, PageSize: 20}.Offset())
}

func TestNewPaginated_TotalPages(t *testing.T) {
	assert.Equal(t, 0, NewPaginated([]int{}, 0, 1, 20).TotalPages)
	assert.Equal(t, 1, NewPaginated([]int{1}, 20, 1, 20).TotalPages)
	assert.Equal(t, 2, NewPaginated([]int{1}, 21, 1, 20).TotalPages)
	assert.Equal(t, 5, NewPaginated([]int{1}, 5, 1, 0).TotalPages)
}
