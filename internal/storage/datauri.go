package storage

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeDataURI unpacks an RFC 2397 data URI into its payload and
// content type. Generation providers that return inline base64 images
// are normalized through here.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), contentType, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return data, contentType, nil
}
