package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxMainPart      = "word/document.xml"
	wordprocessingML  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	maxDocumentXMLLen = 64 << 20
)

// DOCX reads word/document.xml and collects every w:t run in document order.
type DOCX struct{}

func (DOCX) Name() string  { return "docx" }
func (DOCX) Label() string { return "CONTEXT (DOCX)" }

func (DOCX) Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxMainPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("docx archive has no %s", docxMainPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxMainPart, err)
	}
	defer rc.Close()

	runs, err := textRuns(io.LimitReader(rc, maxDocumentXMLLen))
	if err != nil {
		return "", err
	}
	return strings.Join(runs, "\n"), nil
}

// textRuns walks the XML stream and returns the character data of each
// w:t element. A malformed document is an error, not a partial result.
func textRuns(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var runs []string
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return runs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxMainPart, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "t" || se.Name.Space != wordprocessingML {
			continue
		}
		var v string
		if err := dec.DecodeElement(&v, &se); err != nil {
			return nil, fmt.Errorf("parse %s: %w", docxMainPart, err)
		}
		if v != "" {
			runs = append(runs, v)
		}
	}
}
