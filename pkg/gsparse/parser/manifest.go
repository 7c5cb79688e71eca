package parser

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var (
	sheetsExpr        = xpath.MustCompile(`/*[local-name()='workbook']/*[local-name()='sheets']/*[local-name()='sheet']`)
	relationshipsExpr = xpath.MustCompile(`/*[local-name()='Relationships']/*[local-name()='Relationship']`)
)

// sheetEntry is one <sheet> of the workbook manifest.
type sheetEntry struct {
	name  string
	relID string
}

// parseManifest lists the manifest sheets in workbook order.
func parseManifest(part string, data []byte) ([]sheetEntry, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ContainerFormatError{Part: part, Err: err}
	}

	nodes := xmlquery.QuerySelectorAll(doc, sheetsExpr)
	entries := make([]sheetEntry, 0, len(nodes))
	for i, n := range nodes {
		var e sheetEntry
		for _, a := range n.Attr {
			switch a.Name.Local {
			case "name":
				e.name = a.Value
			case "id":
				e.relID = a.Value
			}
		}
		if e.relID == "" {
			return nil, &ContainerFormatError{
				Part: part,
				Err:  fmt.Errorf("sheet %d (%q) has no relationship id", i+1, e.name),
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Relationship types are matched by their last path segment so that both
// transitional and strict namespaces resolve.
const (
	relOfficeDocument = "officeDocument"
	relSharedStrings  = "sharedStrings"
)

type relationship struct {
	kind   string
	target string
}

// relationships holds the internal relationships of one source part,
// keyed by id, with targets resolved to part names.
type relationships map[string]relationship

// target returns the part of the first relationship of the given kind.
// Ids are compared so that the choice does not depend on map order.
func (r relationships) target(kind string) (string, bool) {
	var id string
	for k, rel := range r {
		if rel.kind == kind && (id == "" || k < id) {
			id = k
		}
	}
	if id == "" {
		return "", false
	}
	return r[id].target, true
}

// parseRelationships reads the relationships part named part. Targets
// resolve against the directory of the part the relationships belong to.
func parseRelationships(part string, data []byte) (relationships, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ContainerFormatError{Part: part, Err: err}
	}

	// xl/_rels/workbook.xml.rels belongs to xl/workbook.xml.
	baseDir := path.Dir(path.Dir(part))
	if baseDir == "." {
		baseDir = ""
	}

	rels := make(relationships)
	for _, n := range xmlquery.QuerySelectorAll(doc, relationshipsExpr) {
		id := n.SelectAttr("Id")
		target := n.SelectAttr("Target")
		if id == "" || target == "" || n.SelectAttr("TargetMode") == "External" {
			continue
		}
		kind := n.SelectAttr("Type")
		if i := strings.LastIndexByte(kind, '/'); i >= 0 {
			kind = kind[i+1:]
		}
		rels[id] = relationship{kind: kind, target: resolvePart(baseDir, target)}
	}
	return rels, nil
}

// locateWorkbook follows the officeDocument relationship of the package
// to the manifest. Packages without package relationships fall back to
// the conventional xl/workbook.xml.
func locateWorkbook(a *archive) (string, error) {
	if !a.has(partPackageRels) {
		return partWorkbook, nil
	}
	data, err := a.read(partPackageRels)
	if err != nil {
		return "", err
	}
	rels, err := parseRelationships(partPackageRels, data)
	if err != nil {
		return "", err
	}
	if part, ok := rels.target(relOfficeDocument); ok {
		return part, nil
	}
	return "", &ContainerFormatError{
		Part: partPackageRels,
		Err:  fmt.Errorf("%w: no %s relationship", errMissingPart, relOfficeDocument),
	}
}

// readManifest locates and parses the workbook manifest.
func readManifest(a *archive) (string, []sheetEntry, error) {
	part, err := locateWorkbook(a)
	if err != nil {
		return "", nil, err
	}
	data, err := a.read(part)
	if err != nil {
		return "", nil, err
	}
	entries, err := parseManifest(part, data)
	if err != nil {
		return "", nil, err
	}
	return part, entries, nil
}
