package util

import (
	"encoding/json"
	"fmt"
	"reflect"
)

var lexTypesMap map[string]reflect.Type

func init() {
	lexTypesMap = make(map[string]reflect.Type)
	RegisterType("blob", &LexBlob{})
}

func RegisterType(id string, val any) {
	t := reflect.TypeOf(val)

	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if _, ok := lexTypesMap[id]; ok {
		panic(fmt.Sprintf("already registered type for %q", id))
	}

	lexTypesMap[id] = t
}

// Allocates a zero value of the Go type registered for a lexicon type identifier.
func NewFromType(typ string) (any, error) {
	t, ok := lexTypesMap[typ]
	if !ok {
		return nil, fmt.Errorf("unknown type: %q", typ)
	}
	v := reflect.New(t)
	return v.Interface(), nil
}

func JsonDecodeValue(b []byte) (any, error) {
	tstr, err := TypeExtract(b)
	if err != nil {
		return nil, err
	}

	ival, err := NewFromType(tstr)
	if err != nil {
		return nil, fmt.Errorf("unrecognized type: %q", tstr)
	}

	if err := json.Unmarshal(b, ival); err != nil {
		return nil, err
	}

	return ival, nil
}

// Wraps an arbitrary record value so it serializes with its "$type" and can
// be decoded back via the type registry.
type LexiconTypeDecoder struct {
	Val any
}

func (ltd *LexiconTypeDecoder) UnmarshalJSON(b []byte) error {
	tstr, err := TypeExtract(b)
	if err != nil {
		return err
	}
	if tstr == "" {
		// records without a type are kept as raw JSON
		var raw json.RawMessage = append([]byte(nil), b...)
		ltd.Val = raw
		return nil
	}

	val, err := JsonDecodeValue(b)
	if err != nil {
		return err
	}

	ltd.Val = val
	return nil
}

func (ltd *LexiconTypeDecoder) MarshalJSON() ([]byte, error) {
	if ltd == nil || ltd.Val == nil {
		return nil, fmt.Errorf("LexiconTypeDecoder MarshalJSON called on a nil")
	}
	return json.Marshal(ltd.Val)
}
