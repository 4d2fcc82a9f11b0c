package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

// maxBodySize limits request bodies.
const maxBodySize = 1 << 20

// jsonObject is a request body kept as raw fields so handlers can tell an
// absent field from an explicit null and reject fields they do not accept.
type jsonObject map[string]json.RawMessage

// readObject reads the request body as a JSON object.
func readObject(r *http.Request) (jsonObject, error) {
	defer r.Body.Close()

	var obj jsonObject
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&obj); err != nil || obj == nil {
		return nil, errs.Invalid("request body must be a JSON object")
	}
	return obj, nil
}

func (o jsonObject) has(key string) bool {
	_, ok := o[key]
	return ok
}

// decodeField decodes one field of o. expected describes the JSON type for
// the error message.
func decodeField[T any](o jsonObject, key, expected string) (model.Optional[T], error) {
	raw, ok := o[key]
	if !ok {
		return model.Optional[T]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return model.Null[T](), nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.Optional[T]{}, errs.Invalid("%s must be %s", key, expected)
	}
	return model.Some(v), nil
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(target); err != nil {
		return errs.Invalid("invalid request body")
	}
	return nil
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, errs.Invalid("invalid %s", name)
	}
	return id, nil
}
