package repository

import (
	"errors"
	"os"
)

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

var errSequenceAttributeMissing = errors.New("sequence counter attribute missing from update response")
