package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	typed := &recordingHandler{}
	wildcard := &recordingHandler{}
	both := &recordingHandler{}

	r.Register(typed, "BillIssued", "BillIssued")
	r.Register(wildcard)
	r.Register(both, "BillIssued")
	r.Register(both)

	got := r.HandlersFor("BillIssued")
	assert.Len(t, got, 3, "duplicates collapse")
	assert.Same(t, typed, got[0])

	assert.Len(t, r.HandlersFor("BillPaymentApplied"), 2)
	assert.Equal(t, 3, r.Len())

	r.Unregister(both)
	assert.Len(t, r.HandlersFor("BillIssued"), 2)
	r.Unregister(typed)
	r.Unregister(wildcard)
	assert.Empty(t, r.HandlersFor("BillIssued"))
	assert.Zero(t, r.Len())
}
