// Package cursor encodes pagination continuation tokens for the store.
package cursor

import (
	"encoding/base64"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// ErrMalformed is returned when a token cannot be decoded or fails its checksum.
var ErrMalformed = errors.New("cursor: malformed token")

// Encode builds an opaque token marking the position after the record
// with the given id within a kind-scoped query.
func Encode(kind string, id int64) string {
	payload := fmt.Sprintf("%s#%d#%08x", kind, id, sum(kind, id))
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// Decode reverses Encode. Tokens produced for one kind do not decode for
// another; callers must check the returned kind.
func Decode(token string) (string, int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", 0, ErrMalformed
	}
	parts := strings.Split(string(raw), "#")
	if len(parts) != 3 {
		return "", 0, ErrMalformed
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, ErrMalformed
	}
	check, err := strconv.ParseUint(parts[2], 16, 32)
	if err != nil || uint32(check) != sum(parts[0], id) {
		return "", 0, ErrMalformed
	}
	return parts[0], id, nil
}

func sum(kind string, id int64) uint32 {
	h := fnv.New32a()
	h.Write([]byte(kind))
	h.Write([]byte{'#'})
	h.Write([]byte(strconv.FormatInt(id, 10)))
	return h.Sum32()
}
