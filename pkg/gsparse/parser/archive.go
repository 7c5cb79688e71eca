package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Conventional part names, used when a package carries no relationship
// pointing elsewhere.
const (
	partPackageRels   = "_rels/.rels"
	partWorkbook      = "xl/workbook.xml"
	partWorkbookRels  = "xl/_rels/workbook.xml.rels"
	partSharedStrings = "xl/sharedStrings.xml"
)

// archive indexes the parts of an OOXML package by name.
type archive struct {
	parts map[string]*zip.File
}

func openArchive(data []byte) (*archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ContainerFormatError{Err: err}
	}
	a := &archive{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.parts[strings.TrimPrefix(f.Name, "/")] = f
	}
	return a, nil
}

func (a *archive) has(name string) bool {
	_, ok := a.parts[name]
	return ok
}

// read returns the bytes of a part. A missing part is a ContainerFormatError.
func (a *archive) read(name string) ([]byte, error) {
	f, ok := a.parts[name]
	if !ok {
		return nil, &ContainerFormatError{Part: name, Err: errMissingPart}
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &ContainerFormatError{Part: name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &ContainerFormatError{Part: name, Err: err}
	}
	return data, nil
}

// resolvePart turns a relationship target into a package part name.
// Targets are relative to the directory of the source part unless they
// start with '/'.
func resolvePart(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(baseDir, target), "/")
}

// relsPartFor names the relationships part of a source part, e.g.
// xl/_rels/workbook.xml.rels for xl/workbook.xml.
func relsPartFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

// readElementText collects the character data up to the end of the
// element whose start token was just consumed.
func readElementText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// readRichText concatenates the <t> runs of a shared or inline string,
// leaving out phonetic runs.
func readRichText(decoder *xml.Decoder) (string, error) {
	var text strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				s, err := readElementText(decoder)
				if err != nil {
					return "", err
				}
				text.WriteString(s)
			case "rPh":
				if err := decoder.Skip(); err != nil {
					return "", err
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return text.String(), nil
}

// parseSharedStrings reads the shared string table in index order.
func parseSharedStrings(part string, data []byte) ([]string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var table []string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return table, nil
		}
		if err != nil {
			return nil, &ContainerFormatError{Part: part, Err: err}
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "si" {
			s, err := readRichText(decoder)
			if err != nil {
				return nil, &ContainerFormatError{Part: part, Err: fmt.Errorf("string %d: %w", len(table), err)}
			}
			table = append(table, s)
		}
	}
}

func attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
