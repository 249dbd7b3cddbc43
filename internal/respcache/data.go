package respcache

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record is one persisted cache entry. Response holds the codec token of
// the (possibly JSON-serialized) value, never the value itself.
type Record struct {
	Key      string `json:"key"`
	Response string `json:"response"`
}

// wireRecord distinguishes an absent field from an empty one while
// reading lines back.
type wireRecord struct {
	Key      *string `json:"key"`
	Response *string `json:"response"`
}

// Mode decides how values cross the text boundary of the backing file.
// It is fixed when a cache is opened.
type Mode[V any] interface {
	// Serialize turns a value into the text that gets encoded on disk.
	Serialize(value V) (string, error)
	// Deserialize parses decoded text back into a value.
	Deserialize(text string) (V, error)
	// Structured reports whether values are JSON documents rather than opaque text.
	Structured() bool
}

type rawMode struct{}

// Raw stores and returns values as opaque text.
func Raw() Mode[string] {
	return rawMode{}
}

func (rawMode) Serialize(value string) (string, error) {
	return value, nil
}

func (rawMode) Deserialize(text string) (string, error) {
	return text, nil
}

func (rawMode) Structured() bool {
	return false
}

type structuredMode[T any] struct{}

// Structured stores values as JSON documents and parses them back into T
// when the cache is loaded.
func Structured[T any]() Mode[T] {
	return structuredMode[T]{}
}

func (structuredMode[T]) Serialize(value T) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (structuredMode[T]) Deserialize(text string) (T, error) {
	var value T
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

func (structuredMode[T]) Structured() bool {
	return true
}
