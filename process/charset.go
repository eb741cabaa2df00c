package process

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

const utf8Name = "utf-8"

var (
	boms = []struct {
		bom  []byte
		name string
	}{
		{[]byte{0xEF, 0xBB, 0xBF}, "utf-8"},
		{[]byte{0xFE, 0xFF}, "utf-16be"},
		{[]byte{0xFF, 0xFE}, "utf-16le"},
	}

	// only form allowed by CSS Syntax: at the very start, double quotes, single space
	charsetRule = regexp.MustCompile(`^@charset "([^"]*)";`)
)

// decodeStylesheet converts stylesheet to UTF-8. Byte order mark takes
// precedence over @charset rule, without either UTF-8 is assumed. When
// conversion happens @charset rule is rewritten accordingly. Returns name of
// the detected encoding.
func decodeStylesheet(data []byte) ([]byte, string, error) {
	name, body, marked := utf8Name, data, false
	for _, b := range boms {
		if bytes.HasPrefix(data, b.bom) {
			name, body, marked = b.name, data[len(b.bom):], true
			break
		}
	}
	if !marked {
		if m := charsetRule.FindSubmatch(body); m != nil {
			name = strings.ToLower(string(m[1]))
		}
	}

	enc, canonical := charset.Lookup(name)
	if enc == nil {
		return nil, "", fmt.Errorf("unsupported stylesheet encoding %q", name)
	}
	// UTF-16 label without byte order mark means UTF-8
	if !marked && strings.HasPrefix(canonical, "utf-16") {
		canonical = utf8Name
	}
	if canonical == utf8Name {
		return body, canonical, nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode stylesheet from %s: %w", canonical, err)
	}
	out = bytes.TrimPrefix(out, []byte("\ufeff"))
	// content is UTF-8 now
	out = charsetRule.ReplaceAll(out, []byte(`@charset "UTF-8";`))
	return out, canonical, nil
}
