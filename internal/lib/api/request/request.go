package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Common errors
var (
	ErrEmptyBody = errors.New("request body is empty")
)

// Binder is an interface for entities that can validate themselves
type Binder interface {
	Bind(*http.Request) error
}

// Decode decodes a JSON request body into target.
func Decode(r *http.Request, target interface{}) error {
	err := json.NewDecoder(r.Body).Decode(target)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// DecodeAndValidate decodes a JSON request body into target and runs its
// Bind validation when the target implements Binder.
func DecodeAndValidate(r *http.Request, target interface{}) error {
	if err := Decode(r, target); err != nil {
		return err
	}
	if binder, ok := target.(Binder); ok {
		return binder.Bind(r)
	}
	return nil
}

// Pagination extracts page/count query parameters with defaults and returns
// offset and limit for repository queries. offset = (page - 1) * count.
func Pagination(r *http.Request) (page, count, offset int) {
	page = queryInt(r, "page", 1)
	count = queryInt(r, "count", 100)
	if page <= 0 {
		page = 1
	}
	if count <= 0 {
		count = 100
	}
	return page, count, (page - 1) * count
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n := 0
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
