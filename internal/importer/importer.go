// Package importer reads cut lists from CSV, Excel and DXF files. CSV input
// gets automatic delimiter detection; all tabular input is mapped by header
// names in English or French, or by position when there is no header.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/barcut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Row problems are
// collected rather than returned so one bad line does not lose the rest.
type ImportResult struct {
	Items    []model.DemandItem
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Length   int
	Width    int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "part", "part name", "description", "desc", "piece", "item", "mark", "repère", "repere", "désignation", "designation", "nom"},
	"length":   {"length", "len", "l", "cut length", "longueur", "long"},
	"width":    {"width", "w", "largeur", "larg"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces", "quantité", "quantite", "qté", "qte", "nb"},
}

// aliasRole is headerAliases inverted: lowercase header text to role.
var aliasRole = func() map[string]string {
	m := make(map[string]string)
	for role, aliases := range headerAliases {
		for _, a := range aliases {
			m[a] = role
		}
	}
	return m
}()

// sniffRows is how many records DetectCSVDelimiter looks at.
const sniffRows = 20

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

// DetectCSVDelimiter picks the delimiter that splits the first records of
// data into a constant number of columns, preferring wider tables. Comma
// is the answer when nothing splits a line in two.
func DetectCSVDelimiter(data []byte) rune {
	best, bestRows, bestCols := ',', 0, 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		rows, cols := consistentRows(data, d)
		if cols < 2 {
			continue
		}
		if rows > bestRows || (rows == bestRows && cols > bestCols) {
			best, bestRows, bestCols = d, rows, cols
		}
	}
	return best
}

// consistentRows counts the sampled records with as many fields as the first one.
func consistentRows(data []byte, delim rune) (rows, cols int) {
	r := newCSVReader(bytes.NewReader(data), delim)
	for n := 0; n < sniffRows; n++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, 0
		}
		if n == 0 {
			cols = len(rec)
		}
		if len(rec) == cols {
			rows++
		}
	}
	return rows, cols
}

// DetectColumns maps a header row to column roles. The first column
// matching a role wins. Without a recognizable header it returns the
// positional mapping label, length, quantity, width and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, Length: -1, Width: -1, Quantity: -1}
	slots := map[string]*int{"label": &m.Label, "length": &m.Length, "width": &m.Width, "quantity": &m.Quantity}

	header := false
	for i, c := range row {
		role, ok := aliasRole[strings.ToLower(strings.TrimSpace(c))]
		if !ok {
			continue
		}
		header = true
		if *slots[role] == -1 {
			*slots[role] = i
		}
	}
	if !header {
		return ColumnMapping{Label: 0, Length: 1, Quantity: 2, Width: 3}, false
	}
	return m, true
}

// ParseMillimetres parses a dimension in millimetres. Spaces are ignored
// and a comma is accepted as decimal separator. Fractional values are
// rounded to the nearest millimetre and reported through rounded.
func ParseMillimetres(s string) (mm int, rounded bool, err error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")
	if !strings.Contains(clean, ".") {
		clean = strings.Replace(clean, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("not a number: %q", s)
	}
	r := math.Round(v)
	if r > math.MaxInt32 || r < math.MinInt32 {
		return 0, false, fmt.Errorf("out of range: %q", s)
	}
	return int(r), r != v, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a demand item from a row using the given column mapping.
// Returns the item, any error message, and any warning messages.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, itemCount int) (model.DemandItem, string, []string) {
	var warnings []string

	label := cell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("Item %d", itemCount+1)
	}

	lengthStr := cell(row, mapping.Length)
	if lengthStr == "" {
		return model.DemandItem{}, fmt.Sprintf("%s: Missing length value", rowLabel), nil
	}
	length, rounded, err := ParseMillimetres(lengthStr)
	if err != nil {
		return model.DemandItem{}, fmt.Sprintf("%s: Invalid length '%s'", rowLabel, lengthStr), nil
	}
	if rounded {
		warnings = append(warnings, fmt.Sprintf("%s: Length '%s' rounded to %d mm", rowLabel, lengthStr, length))
	}

	qtyStr := cell(row, mapping.Quantity)
	if qtyStr == "" {
		return model.DemandItem{}, fmt.Sprintf("%s: Missing quantity value", rowLabel), nil
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.DemandItem{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), nil
	}

	width := 0
	if widthStr := cell(row, mapping.Width); widthStr != "" {
		width, rounded, err = ParseMillimetres(widthStr)
		if err != nil {
			return model.DemandItem{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr), nil
		}
		if rounded {
			warnings = append(warnings, fmt.Sprintf("%s: Width '%s' rounded to %d mm", rowLabel, widthStr, width))
		}
	}

	if length <= 0 || qty <= 0 || width < 0 {
		return model.DemandItem{}, fmt.Sprintf("%s: Length and quantity must be positive", rowLabel), nil
	}

	if width > 0 {
		return model.NewPlateItem(label, length, width, qty), "", warnings
	}
	return model.NewDemandItem(label, length, qty), "", warnings
}

func isEmptyRow(row []string) bool {
	return strings.TrimSpace(strings.Join(row, "")) == ""
}

func newCSVReader(r io.Reader, delim rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

func failed(format string, args ...any) ImportResult {
	return ImportResult{Errors: []string{fmt.Sprintf(format, args...)}}
}

// ImportCSV imports demand items from a CSV file, detecting the delimiter.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return failed("Cannot open file: %v", err)
	}
	delim := DetectCSVDelimiter(data)
	var notes []string
	if delim != ',' {
		notes = append(notes, fmt.Sprintf("Detected %s delimiter", delimiterNames[delim]))
	}
	return importCSV(bytes.NewReader(data), delim, notes)
}

// ImportCSVFromReader imports demand items from CSV with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	return importCSV(r, delimiter, nil)
}

func importCSV(r io.Reader, delim rune, notes []string) ImportResult {
	records, err := newCSVReader(r, delim).ReadAll()
	if err != nil {
		return failed("Cannot read CSV: %v", err)
	}
	return importFromRows(records, "Line", notes)
}

// ImportExcel imports demand items from the first sheet of a workbook.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return failed("Cannot open Excel file: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return failed("Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return failed("Cannot read sheet %s: %v", sheets[0], err)
	}
	return importFromRows(rows, "Row", nil)
}

// ImportFile picks the reader from the file extension.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportCSV(path)
	}
}

// locateHeader returns the column mapping and the first data row. A
// header row is recognized by its aliases, or failing that by a length
// column that does not parse.
func locateHeader(first []string) (mapping ColumnMapping, start int, errMsg string) {
	mapping, ok := DetectColumns(first)
	if !ok {
		if _, _, err := ParseMillimetres(cell(first, mapping.Length)); err != nil && len(first) >= 2 {
			return mapping, 1, ""
		}
		return mapping, 0, ""
	}
	var missing []string
	if mapping.Length == -1 {
		missing = append(missing, "Length")
	}
	if mapping.Quantity == -1 {
		missing = append(missing, "Quantity")
	}
	if len(missing) > 0 {
		return mapping, 0, "Required columns not found in header: " + strings.Join(missing, ", ")
	}
	return mapping, 1, ""
}

// importFromRows turns CSV or sheet rows into demand items. Bad rows are
// reported and skipped.
func importFromRows(rows [][]string, rowPrefix string, notes []string) ImportResult {
	if len(rows) == 0 {
		return failed("No data rows found")
	}
	result := ImportResult{Warnings: notes}

	mapping, start, errMsg := locateHeader(rows[0])
	if errMsg != "" {
		result.Errors = append(result.Errors, errMsg)
		return result
	}
	if start == 1 {
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	for i, row := range rows[start:] {
		if isEmptyRow(row) {
			continue
		}
		item, errMsg, warnings := parseRow(row, mapping, fmt.Sprintf("%s %d", rowPrefix, start+i+1), len(result.Items))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Items = append(result.Items, item)
	}

	if mixedModes(result.Items) {
		result.Warnings = append(result.Warnings, "Some rows have a width and some do not; bar stock ignores widths, plate stock rejects items without one")
	}
	return result
}

func mixedModes(items []model.DemandItem) bool {
	plates := 0
	for _, it := range items {
		if it.Width > 0 {
			plates++
		}
	}
	return plates > 0 && plates < len(items)
}
