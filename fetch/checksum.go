package fetch

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strings"
)

// ErrChecksumMismatch is returned when a downloaded artifact does not match
// its locked checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// VerifyingReader wraps an artifact body so that reaching EOF verifies the
// content against a "sha256-<hex>" integrity string.
func VerifyingReader(rc io.ReadCloser, integrity string) (io.ReadCloser, error) {
	digest, ok := strings.CutPrefix(integrity, "sha256-")
	if !ok {
		return nil, fmt.Errorf("unsupported integrity format: %s", integrity)
	}
	want, err := hex.DecodeString(digest)
	if err != nil {
		return nil, fmt.Errorf("invalid integrity digest: %w", err)
	}
	return &verifyReader{rc: rc, hash: sha256.New(), want: want}, nil
}

type verifyReader struct {
	rc       io.ReadCloser
	hash     hash.Hash
	want     []byte
	verified bool
}

func (v *verifyReader) Read(p []byte) (int, error) {
	n, err := v.rc.Read(p)
	if n > 0 {
		_, _ = v.hash.Write(p[:n])
	}
	if errors.Is(err, io.EOF) && !v.verified {
		v.verified = true
		if got := v.hash.Sum(nil); !bytes.Equal(got, v.want) {
			return n, fmt.Errorf("%w: got sha256-%s", ErrChecksumMismatch, hex.EncodeToString(got))
		}
	}
	return n, err
}

func (v *verifyReader) Close() error {
	return v.rc.Close()
}
