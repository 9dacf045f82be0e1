package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"APPLICATION/X-WWW-FORM-URLENCODED", true},
		{"image/png", false},
		{"", false},
	}
	for _, tt := range tests {
		err := validateContentType(tt.contentType)
		assert.Equal(t, tt.ok, err == nil, tt.contentType)
	}
}

func TestValidateSize(t *testing.T) {
	assert.Error(t, validateSize(0, MaxObjectSize))
	assert.NoError(t, validateSize(512, MaxObjectSize))
	assert.NoError(t, validateSize(MaxObjectSize, MaxObjectSize))
	assert.Error(t, validateSize(MaxObjectSize+1, MaxObjectSize))
}
