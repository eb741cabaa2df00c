package main

import (
	"fmt"
	"io"

	"brandcss/recolor"
)

// writePalette prints replacement table in declaration order, one pair per
// line.
func writePalette(w io.Writer, pairs []recolor.Pair) error {
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%s -> %s\n", p.From, p.To); err != nil {
			return err
		}
	}
	return nil
}
