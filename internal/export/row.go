package export

import (
	"bytes"

	"github.com/couchcryptid/navdata-etl/internal/domain"
)

// Row is a column-ordered record. Setting an existing key keeps its
// position; setting a new key appends it.
type Row struct {
	keys   []string
	values map[string]domain.Value
}

// NewRow builds a row from parallel column and value slices.
func NewRow(cols []string, vals []domain.Value) *Row {
	r := &Row{values: make(map[string]domain.Value, len(cols))}
	for i, c := range cols {
		r.Set(c, vals[i])
	}
	return r
}

func (r *Row) Keys() []string { return r.keys }

func (r *Row) Get(key string) (domain.Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Row) Set(key string, v domain.Value) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Pop removes key and returns its value.
func (r *Row) Pop(key string) (domain.Value, bool) {
	v, ok := r.values[key]
	if !ok {
		return domain.Value{}, false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Project returns a new row with only the listed keys that are present, in
// list order.
func (r *Row) Project(cols []string) *Row {
	out := &Row{values: make(map[string]domain.Value, len(cols))}
	for _, c := range cols {
		if v, ok := r.values[c]; ok {
			out.Set(c, v)
		}
	}
	return out
}

// MarshalJSON writes the keys in row order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := domain.EncodeJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
