// Package summary computes the stored measurements for a regulation
// document: a word count over its text-bearing regions and a checksum
// for change detection.
package summary

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Summary holds the computed measurements for one document.
type Summary struct {
	WordCount int
	Checksum  string
}

// Summarize walks the XML token stream once. Words are counted over the
// concatenated descendant text of every HEAD and P element, including
// text inside nested inline markup. The checksum is an MD5 over the
// canonical re-serialization of the entire document, so structural
// changes alter the checksum even when the visible text is unchanged.
// The result is a pure function of the input bytes.
func Summarize(content []byte) (Summary, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var canonical bytes.Buffer
	enc := xml.NewEncoder(&canonical)

	var capture strings.Builder
	regionDepth := 0
	wordCount := 0
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Summary{}, fmt.Errorf("parse document: %w", err)
		}
		if err := enc.EncodeToken(tok); err != nil {
			return Summary{}, fmt.Errorf("serialize document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			if regionDepth > 0 {
				regionDepth++
			} else if t.Name.Local == "HEAD" || t.Name.Local == "P" {
				regionDepth = 1
				capture.Reset()
			}
		case xml.EndElement:
			if regionDepth > 0 {
				regionDepth--
				if regionDepth == 0 {
					wordCount += len(strings.Fields(capture.String()))
				}
			}
		case xml.CharData:
			if regionDepth > 0 {
				capture.Write(t)
			}
		}
	}

	if !sawElement {
		return Summary{}, errors.New("document contains no XML elements")
	}
	if err := enc.Flush(); err != nil {
		return Summary{}, fmt.Errorf("serialize document: %w", err)
	}

	sum := md5.Sum(canonical.Bytes())
	return Summary{
		WordCount: wordCount,
		Checksum:  hex.EncodeToString(sum[:]),
	}, nil
}
