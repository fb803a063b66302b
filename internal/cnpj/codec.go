package cnpj

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func (c CNPJ) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.digits)
}

// UnmarshalJSON accepts formatted or canonical input and rejects anything
// New rejects.
func (c *CNPJ) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := New(raw)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarshalBSONValue stores the canonical digits as a plain string, so the
// unique index on "cnpj" compares canonical forms.
func (c CNPJ) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(c.digits)
}

func (c *CNPJ) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bsontype.Null {
		*c = CNPJ{}
		return nil
	}
	raw, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("cnpj: cannot decode bson %s", t)
	}
	v, err := New(raw)
	if err != nil {
		return fmt.Errorf("cnpj: stored value %q: %w", raw, err)
	}
	*c = v
	return nil
}
