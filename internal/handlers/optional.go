package handlers

import (
	"bytes"
	"encoding/json"
)

// Optional carries the three states a field of a partial-update body can
// be in: absent (leave the stored value alone), explicit null (clear it,
// nullable fields only), or a value. encoding/json only invokes
// UnmarshalJSON for fields present in the body, which is what makes the
// absent case detectable.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}
