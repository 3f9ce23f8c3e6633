package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	idSize     = 32
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoID returns a 32 character alphanumeric id, the format of every primary
// key in the schema.
func NanoID() string {
	return gonanoid.MustGenerate(idAlphabet, idSize)
}
