// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// utf8BOM is the UTF-8 byte-order mark some editors prepend.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readTextFile reads path and decodes it trying UTF-8, UTF-8 with
// signature, Latin-1, then Windows-1252, in that order. The first
// encoding that decodes without error wins.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if bytes.HasPrefix(data, utf8BOM) {
		stripped := bytes.TrimPrefix(data, utf8BOM)
		if utf8.Valid(stripped) {
			return string(stripped), nil
		}
	} else if utf8.Valid(data) {
		return string(data), nil
	}

	for _, cm := range []*charmap.Charmap{charmap.ISO8859_1, charmap.Windows1252} {
		decoded, err := cm.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), nil
		}
	}

	return "", fmt.Errorf("no supported encoding decodes %s", path)
}
