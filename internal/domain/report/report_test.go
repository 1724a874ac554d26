package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketFor(t *testing.T) {
	assert.Equal(t, AgingCurrent, BucketFor(0))
	assert.Equal(t, AgingCurrent, BucketFor(30))
	assert.Equal(t, Aging31To60, BucketFor(31))
	assert.Equal(t, Aging61To100, BucketFor(100))
	assert.Equal(t, AgingOverdue, BucketFor(101))
	assert.Len(t, BucketNames(), 4)
}
