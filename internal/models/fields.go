package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ID returns the server-assigned identity. Products expose "id", the other
// collections expose Mongo's "_id".
func (r Resource) ID() string {
	if id := r.String("id"); id != "" {
		return id
	}
	return r.String("_id")
}

// Lookup walks a dotted path ("customer.email") through nested objects.
func (r Resource) Lookup(path string) interface{} {
	var cur interface{} = map[string]interface{}(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[part]
	}
	return cur
}

// String returns a string field, or "" if missing or not a string.
func (r Resource) String(path string) string {
	if v, ok := r.Lookup(path).(string); ok {
		return v
	}
	return ""
}

// Bool returns a bool field, or false if missing.
func (r Resource) Bool(path string) bool {
	if v, ok := r.Lookup(path).(bool); ok {
		return v
	}
	return false
}

// Float returns a numeric field as float64.
func (r Resource) Float(path string) float64 {
	f, _ := toFloat(r.Lookup(path))
	return f
}

// Time parses an RFC 3339 timestamp field such as createdAt.
func (r Resource) Time(path string) (time.Time, bool) {
	s := r.String(path)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Clone returns a shallow copy.
func (r Resource) Clone() Resource {
	out := make(Resource, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// readOnlyFields are server-maintained and stripped before a record is re-sent.
var readOnlyFields = []string{"_id", "__v", "createdAt", "updatedAt"}

// Writable returns a copy of r without server-maintained fields.
func (r Resource) Writable() Resource {
	out := r.Clone()
	for _, f := range readOnlyFields {
		delete(out, f)
	}
	return out
}

// CoerceNumbers converts string form values of the named fields into numbers.
// Empty strings are dropped so the API applies its own default. A value that
// does not parse is returned as the first bad field name.
func (r Resource) CoerceNumbers(fields []string) (string, bool) {
	for _, f := range fields {
		s, ok := r[f].(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			delete(r, f)
			continue
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return f, false
		}
		r[f] = n
	}
	return "", true
}

// toFloat converts the numeric types JSON decoding can produce.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
