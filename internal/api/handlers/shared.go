package handlers

import (
	"encoding/json"
	"net/http"
)

// parseJSON decodes the request body into the given request type.
// Unknown fields are rejected so typos in payloads surface as 400s instead of
// silently dropped settings.
func parseJSON[T any](r *http.Request) (T, error) {
	var v T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&v)
	return v, err
}
