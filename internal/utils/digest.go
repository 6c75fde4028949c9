package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileDigest computes the SHA256 digest of a file, streaming its contents.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Digest computes the SHA256 digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileDigestMatch reports whether the file at path has the wanted SHA256
// digest. An unreadable file is an error, not a mismatch.
func FileDigestMatch(path, want string) (bool, error) {
	if want == "" {
		return false, fmt.Errorf("no digest recorded for %s", path)
	}
	got, err := FileDigest(path)
	if err != nil {
		return false, err
	}
	return got == want, nil
}
