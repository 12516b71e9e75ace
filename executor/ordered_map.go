package executor

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

var jsonConfig = jsoniter.ConfigCompatibleWithStandardLibrary

// OrderedMap is a string-keyed map that remembers insertion order. Response
// maps use it so the serialized data follows source-document field order.
type OrderedMap struct {
	m     map[string]any
	order []string
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{m: map[string]any{}}
}

func NewOrderedMapWithLength(n int) *OrderedMap {
	return &OrderedMap{m: make(map[string]any, n), order: make([]string, 0, n)}
}

func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.m[key]; !ok {
		m.order = append(m.order, key)
	}
	m.m[key] = value
}

func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.m[key]
	return v, ok
}

func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.m)
}

func (m *OrderedMap) Keys() []string { return m.order }

func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	pairs := make([][]byte, len(m.order))
	for i, key := range m.order {
		keyJSON, err := jsonConfig.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueJSON, err := jsonConfig.Marshal(m.m[key])
		if err != nil {
			return nil, err
		}
		pairs[i] = bytes.Join([][]byte{keyJSON, valueJSON}, []byte{':'})
	}
	return append(append([]byte{'{'}, bytes.Join(pairs, []byte{','})...), '}'), nil
}
