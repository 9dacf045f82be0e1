package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePayloadFlatJSONWithAliases(t *testing.T) {
	body := []byte(`{"name":" Jane Doe ","phone_number":"06 1234 5678","message":"call me","campaign":"abc","budget":2500,"tags":["x"]}`)

	f, err := ParsePayload("application/json", body)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", f.Get(FieldFullName))
	assert.Equal(t, "06 1234 5678", f.Get(FieldPhone))
	assert.Equal(t, "call me", f.Get(FieldNotes))
	assert.Equal(t, "abc", f.Get(FieldCampaignID))
}

func TestParsePayloadMetaFieldData(t *testing.T) {
	body := []byte(`{
		"leadgen_id": 1234567890,
		"field_data": [
			{"name": "full_name", "values": ["Jan Jansen"]},
			{"name": "phone_number", "values": ["+31612345678"]},
			{"name": "email", "values": []}
		]
	}`)

	f, err := ParsePayload("application/json", body)
	require.NoError(t, err)

	assert.Equal(t, "Jan Jansen", f.Get(FieldFullName))
	assert.Equal(t, "+31612345678", f.Get(FieldPhone))
	assert.Empty(t, f.Get(FieldEmail))
}

func TestParsePayloadNestedData(t *testing.T) {
	f, err := ParsePayload("application/json", []byte(`{"event":"lead","data":{"first_name":"Ada","last_name":"Lovelace","mobile":"0612345678"}}`))
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", f.Get(FieldFullName))
	assert.Equal(t, "0612345678", f.Get(FieldPhone))
}

func TestParsePayloadForm(t *testing.T) {
	f, err := ParsePayload("application/x-www-form-urlencoded", []byte("full_name=Jane+Doe&phone=%2B31612345678&platform=meta"))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", f.Get(FieldFullName))
	assert.Equal(t, "+31612345678", f.Get(FieldPhone))
	assert.Equal(t, "meta", f.Get(FieldPlatform))
}

func TestParsePayloadMalformed(t *testing.T) {
	_, err := ParsePayload("application/json", []byte(`{"full_name":`))
	assert.Error(t, err)

	_, err = ParsePayload("application/json", []byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestParsePayloadEmpty(t *testing.T) {
	f, err := ParsePayload("application/json", nil)
	require.NoError(t, err)
	assert.Empty(t, f)
}

func TestCanonicalizePrefersFirstNonEmptyAlias(t *testing.T) {
	f := Canonicalize(map[string]string{"full_name": "", "Name": "Jane", "PHONE": "1"})

	assert.Equal(t, "Jane", f.Get(FieldFullName))
	assert.Equal(t, "1", f.Get(FieldPhone))
}
