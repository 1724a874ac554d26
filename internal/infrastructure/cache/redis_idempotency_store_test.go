package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyEntryEncoding(t *testing.T) {
	tests := []struct {
		name        string
		fingerprint string
		response    []byte
	}{
		{"pending", "3f2a", nil},
		{"completed", "3f2a", []byte(`{"mode":"bulk"}`)},
		{"response with newlines", "9c01", []byte("{\n\"mode\":\"single\"\n}")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp, resp := decodeEntry(encodeEntry(tt.fingerprint, tt.response))
			assert.Equal(t, tt.fingerprint, fp)
			assert.Equal(t, tt.response, resp)
		})
	}

	fp, resp := decodeEntry([]byte("garbage"))
	assert.Empty(t, fp)
	assert.Nil(t, resp)
}
