package process

import (
	"bytes"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

func TestDecodeStylesheet(t *testing.T) {
	cp1251, err := charmap.Windows1251.NewEncoder().String(`@charset "windows-1251";` + "\n" + `a::after{content:"тема";color:#0176d3}`)
	if err != nil {
		t.Fatal(err)
	}
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(`a{content:"тема"}`)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      []byte
		want    string
		enc     string
		wantErr bool
	}{
		{"plain", []byte(`a{color:red}`), `a{color:red}`, "utf-8", false},
		{"utf-8 bom", []byte("\xEF\xBB\xBFa{color:red}"), `a{color:red}`, "utf-8", false},
		{"utf-8 rule", []byte(`@charset "UTF-8";a{}`), `@charset "UTF-8";a{}`, "utf-8", false},
		{"cp1251 rule", []byte(cp1251), `@charset "UTF-8";` + "\n" + `a::after{content:"тема";color:#0176d3}`, "windows-1251", false},
		{"utf-16 bom", []byte(utf16), `a{content:"тема"}`, "utf-16le", false},
		{"bom wins over rule", []byte("\xEF\xBB\xBF" + `@charset "windows-1251";a{}`), `@charset "windows-1251";a{}`, "utf-8", false},
		{"utf-16be rule without bom", []byte(`@charset "utf-16be";a{color:red}`), `@charset "utf-16be";a{color:red}`, "utf-8", false},
		{"utf-16le rule without bom", []byte(`@charset "UTF-16LE";a{}`), `@charset "UTF-16LE";a{}`, "utf-8", false},
		{"utf-16 rule without bom", []byte(`@charset "utf-16";a{}`), `@charset "utf-16";a{}`, "utf-8", false},
		{"unknown charset", []byte(`@charset "klingon";a{}`), "", "", true},
		{"rule not at start", []byte(` @charset "windows-1251";a{}`), ` @charset "windows-1251";a{}`, "utf-8", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc, err := decodeStylesheet(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeStylesheet() error = %v, wantErr %t", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("decodeStylesheet() = %q, want %q", got, tt.want)
			}
			if enc != tt.enc {
				t.Errorf("encoding = %q, want %q", enc, tt.enc)
			}
		})
	}
}
