package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

func decodeJSON(body []byte) (*rawPokemon, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	var raw rawPokemon
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("field '%s' has wrong type: got JSON %s, want %s", typeErr.Field, typeErr.Value, typeErr.Type)
		}
		return nil, fmt.Errorf("malformed JSON: %w", err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("malformed JSON: trailing data after record")
	}

	return &raw, nil
}
