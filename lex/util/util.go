package util

import (
	"encoding/json"
)

type typeExtractor struct {
	Type string `json:"$type"`
}

// Returns the "$type" field of a JSON object, or empty string if it has none.
func TypeExtract(b []byte) (string, error) {
	var te typeExtractor
	if err := json.Unmarshal(b, &te); err != nil {
		return "", err
	}

	return te.Type, nil
}
