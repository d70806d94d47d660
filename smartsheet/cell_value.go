package smartsheet

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Hyperlink is the link attachment a structured cell can carry.
type Hyperlink struct {
	URL string `json:"url,omitempty"`
}

// CellValue models the two wire forms a cell can take: a bare scalar,
// or a structured object with value, displayValue, and an optional
// hyperlink. Display resolution order is displayValue, then raw value,
// then empty string; call Display instead of re-deriving it at call
// sites.
type CellValue struct {
	Value        any
	DisplayValue string
	Hyperlink    *Hyperlink
	Structured   bool
}

// Scalar wraps a bare cell value.
func Scalar(value any) CellValue {
	return CellValue{Value: value}
}

// Structured wraps a cell that arrived as an object.
func StructuredCell(value any, displayValue string, link *Hyperlink) CellValue {
	return CellValue{
		Value:        value,
		DisplayValue: displayValue,
		Hyperlink:    link,
		Structured:   true,
	}
}

// Display returns the human-readable form of the cell.
func (c CellValue) Display() string {
	if display := strings.TrimSpace(c.DisplayValue); display != "" {
		return display
	}
	return scalarText(c.Value)
}

// IsEmpty reports whether the cell has neither value nor display text.
func (c CellValue) IsEmpty() bool {
	return c.Display() == ""
}

func scalarText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type wireCell struct {
	ColumnID     json.Number `json:"columnId"`
	Value        any         `json:"value"`
	DisplayValue string      `json:"displayValue"`
	Hyperlink    *Hyperlink  `json:"hyperlink"`
}

// DecodeCell normalizes one wire cell into its column ID and value.
// Column IDs arrive as numbers or strings depending on the payload
// shape, both map to the decimal string form.
func DecodeCell(raw json.RawMessage) (string, CellValue, error) {
	var cell wireCell
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.UseNumber()
	if err := decoder.Decode(&cell); err != nil {
		return "", CellValue{}, fmt.Errorf("smartsheet: malformed cell: %w", err)
	}
	columnID := strings.TrimSpace(cell.ColumnID.String())
	if columnID == "" {
		return "", CellValue{}, fmt.Errorf("smartsheet: cell is missing columnId")
	}
	if cell.DisplayValue != "" || cell.Hyperlink != nil {
		return columnID, StructuredCell(cell.Value, cell.DisplayValue, cell.Hyperlink), nil
	}
	return columnID, Scalar(cell.Value), nil
}
