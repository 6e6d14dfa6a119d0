package util

import (
	"encoding/json"
	"errors"
	"reflect"
)

// SerializeToJSONString serializes the given value to a compact JSON string.
func SerializeToJSONString(v interface{}) (string, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(jsonBytes), nil
}

// DeserializeFromJSONString deserializes the given JSON string into v, which
// must be a pointer.
func DeserializeFromJSONString(jsonString string, v interface{}) error {
	if reflect.ValueOf(v).Kind() != reflect.Ptr {
		return errors.New("input must be a pointer")
	}
	return json.Unmarshal([]byte(jsonString), v)
}
