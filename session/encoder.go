package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrEthical07/goGuard/route"
)

const (
	fieldUserID    = "user_id"
	fieldUsername  = "username"
	fieldRole      = "role"
	fieldFullName  = "full_name"
	fieldName      = "name"
	fieldEmail     = "email"
	fieldCreatedAt = "created_at"
)

// ParseUser decodes a persisted user record. Every failure wraps
// [ErrMalformedUser].
func ParseUser(raw string) (*User, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedUser, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedUser)
	}

	u := &User{}

	role, err := takeString(fields, fieldRole)
	if err != nil {
		return nil, err
	}
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("%w: role missing", ErrMalformedUser)
	}
	u.Role = route.Role(role)

	if u.ID, err = takeID(fields, fieldUserID); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{fieldUsername, &u.Username},
		{fieldFullName, &u.FullName},
		{fieldName, &u.Name},
		{fieldEmail, &u.Email},
		{fieldCreatedAt, &u.CreatedAt},
	} {
		if *f.dst, err = takeString(fields, f.name); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		u.Extra = fields
	}
	return u, nil
}

// EncodeUser serializes u into the persisted record format.
func EncodeUser(u *User) (string, error) {
	if u == nil || strings.TrimSpace(string(u.Role)) == "" {
		return "", fmt.Errorf("%w: role missing", ErrMalformedUser)
	}

	out := make(map[string]any, len(u.Extra)+7)
	for k, v := range u.Extra {
		out[k] = v
	}
	out[fieldRole] = string(u.Role)
	setIfNotEmpty(out, fieldUserID, u.ID)
	setIfNotEmpty(out, fieldUsername, u.Username)
	setIfNotEmpty(out, fieldFullName, u.FullName)
	setIfNotEmpty(out, fieldName, u.Name)
	setIfNotEmpty(out, fieldEmail, u.Email)
	setIfNotEmpty(out, fieldCreatedAt, u.CreatedAt)

	data, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func setIfNotEmpty(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

// takeString removes key from fields and decodes it as a string. Absent and
// null values decode to "".
func takeString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	delete(fields, key)
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: field %s is not a string", ErrMalformedUser, key)
	}
	return s, nil
}

// takeID accepts string and numeric identifiers.
func takeID(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", nil
	}
	delete(fields, key)
	if isNull(raw) {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%w: field %s: %v", ErrMalformedUser, key, err)
	}
	switch id := v.(type) {
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fmt.Errorf("%w: field %s is not a string or number", ErrMalformedUser, key)
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
