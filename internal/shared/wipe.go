// Package shared provides small helpers used across binaries.
package shared

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to clear password material from memory after hashing.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
