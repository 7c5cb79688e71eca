package parser

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
	"github.com/xuri/excelize/v2"
)

const printAreaName = "_xlnm.Print_Area"

// readMetadata opens the workbook with excelize for its document
// properties and defined names. Failures are logged and yield empty metadata.
func readMetadata(data []byte, logger *slog.Logger) Metadata {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		logger.Warn("workbook metadata unavailable", slog.Any("error", err))
		return Metadata{}
	}
	defer f.Close()

	var meta Metadata
	if props, err := f.GetDocProps(); err != nil {
		logger.Debug("document properties unavailable", slog.Any("error", err))
	} else {
		meta.Title = strings.TrimSpace(props.Title)
	}
	meta.NamedRanges = extractNamedRanges(f.GetDefinedName(), logger)
	return meta
}

// extractNamedRanges keeps the defined names that refer to a single
// rectangular area. Sheet-scoped names are prefixed with the sheet name,
// and print areas are reported as "<sheet>!Print_Area".
func extractNamedRanges(names []excelize.DefinedName, logger *slog.Logger) map[string]models.Range {
	result := make(map[string]models.Range)
	for _, dn := range names {
		key := namedRangeKey(dn)
		ref := strings.TrimPrefix(strings.TrimSpace(dn.RefersTo), "=")

		// Multiple areas are joined by commas outside quoted sheet names.
		if strings.Contains(unquoted(ref), ",") {
			logger.Warn("skipping multi-area defined name", slog.String("name", key), slog.String("refers_to", ref))
			continue
		}
		r, err := models.ParseRange(ref)
		if err != nil {
			logger.Warn("skipping defined name", slog.String("name", key), slog.String("refers_to", ref), slog.Any("error", err))
			continue
		}
		result[key] = r
	}
	return result
}

func namedRangeKey(dn excelize.DefinedName) string {
	name := dn.Name
	if strings.EqualFold(name, printAreaName) {
		name = "Print_Area"
	}
	if dn.Scope != "" && dn.Scope != "Workbook" {
		return dn.Scope + "!" + name
	}
	return name
}

// unquoted drops the quoted sheet-name sections of a reference.
func unquoted(ref string) string {
	var b strings.Builder
	quoted := false
	for _, r := range ref {
		if r == '\'' {
			quoted = !quoted
			continue
		}
		if !quoted {
			b.WriteRune(r)
		}
	}
	return b.String()
}
