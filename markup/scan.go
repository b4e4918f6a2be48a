package markup

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"stylegen/css"
)

// ScanHTML collects class tokens from every element of an HTML stream.
func ScanHTML(r io.Reader) (css.ClassSet, error) {
	used := css.NewClassSet()
	if err := ScanHTMLInto(r, used); err != nil {
		return nil, err
	}
	return used, nil
}

// ScanHTMLInto adds class tokens found in HTML stream to used.
func ScanHTMLInto(r io.Reader, used css.ClassSet) error {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("unable to scan html: %w", err)
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			_, hasAttr := z.TagName()
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if string(key) == "class" {
					used.Add(strings.Fields(string(val))...)
				}
			}
		}
	}
}
