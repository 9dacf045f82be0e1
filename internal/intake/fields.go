package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Canonical field names.
const (
	FieldFullName   = "full_name"
	FieldPhone      = "phone"
	FieldEmail      = "email"
	FieldProduct    = "product"
	FieldNotes      = "notes"
	FieldPlatform   = "platform"
	FieldCampaignID = "campaign_id"
	FieldAssignedTo = "assigned_to"
	FieldStatus     = "status"
	FieldQuality    = "lead_quality"
	FieldLeadSource = "lead_source"

	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
)

// Fields is a flat, canonicalized view of a submitted payload.
type Fields map[string]string

var fieldAliases = map[string][]string{
	FieldFullName:   {"full_name", "fullname", "name", "full name"},
	FieldPhone:      {"phone", "phone_number", "phonenumber", "mobile", "mobile_number", "tel", "telephone"},
	FieldEmail:      {"email", "email_address", "e-mail"},
	FieldProduct:    {"product", "product_name", "interest"},
	FieldNotes:      {"notes", "note", "message", "comments"},
	FieldPlatform:   {"platform"},
	FieldCampaignID: {"campaign_id", "campaign", "campaignid"},
	FieldAssignedTo: {"assigned_to", "assignee", "assignee_id"},
	FieldStatus:     {"status"},
	FieldQuality:    {"lead_quality", "quality"},
	FieldLeadSource: {"lead_source", "source", "utm_source"},
	fieldFirstName:  {"first_name", "firstname", "given_name"},
	fieldLastName:   {"last_name", "lastname", "family_name", "surname"},
}

// Canonicalize resolves aliases in raw into canonical field names. The first
// non-empty alias wins. A missing full name is assembled from first and
// last name.
func Canonicalize(raw map[string]string) Fields {
	lowered := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if _, exists := lowered[key]; exists && strings.TrimSpace(v) == "" {
			continue
		}
		lowered[key] = strings.TrimSpace(v)
	}

	out := make(Fields, len(fieldAliases))
	for canonical, aliases := range fieldAliases {
		for _, alias := range aliases {
			if v := lowered[alias]; v != "" {
				out[canonical] = v
				break
			}
		}
	}

	if out[FieldFullName] == "" {
		name := strings.TrimSpace(out[fieldFirstName] + " " + out[fieldLastName])
		if name != "" {
			out[FieldFullName] = name
		}
	}
	delete(out, fieldFirstName)
	delete(out, fieldLastName)
	return out
}

// Get returns the trimmed value of a canonical field.
func (f Fields) Get(name string) string {
	return strings.TrimSpace(f[name])
}

var errMalformedPayload = errors.New("malformed payload")

// ParsePayload decodes a webhook body. JSON objects are flattened: scalar
// top-level values are kept, a nested "data" object is merged, and Meta
// style "field_data" arrays of {name, values} become fields. Bodies that
// are not JSON are read as form encoding.
func ParsePayload(contentType string, body []byte) (Fields, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Fields{}, nil
	}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") ||
		(trimmed[0] != '{' && trimmed[0] != '[') {
		values, err := url.ParseQuery(string(trimmed))
		if err != nil {
			return nil, errMalformedPayload
		}
		raw := make(map[string]string, len(values))
		for k := range values {
			raw[k] = values.Get(k)
		}
		return Canonicalize(raw), nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, errMalformedPayload
	}

	raw := make(map[string]string)
	flatten(obj, raw)
	if nested, ok := obj["data"].(map[string]any); ok {
		flatten(nested, raw)
	}
	if entries, ok := obj["field_data"].([]any); ok {
		for _, entry := range entries {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			name, _ := item["name"].(string)
			values, _ := item["values"].([]any)
			if name == "" || len(values) == 0 {
				continue
			}
			if s, ok := scalar(values[0]); ok {
				raw[name] = s
			}
		}
	}
	return Canonicalize(raw), nil
}

func flatten(obj map[string]any, into map[string]string) {
	for k, v := range obj {
		if s, ok := scalar(v); ok {
			into[k] = s
		}
	}
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}
