package roster

import (
	"fmt"
	"strings"
)

const (
	ColumnMemberID    = "member_id"
	ColumnName        = "name"
	ColumnPhoneNumber = "phone_number"
	ColumnEmail       = "email"
)

// DefaultDelimiter separates fields within a roster line.
const DefaultDelimiter = ","

var requiredColumns = []string{ColumnMemberID, ColumnName, ColumnPhoneNumber}

var allowedColumns = map[string]bool{
	ColumnMemberID:    true,
	ColumnName:        true,
	ColumnPhoneNumber: true,
	ColumnEmail:       true,
}

// Row maps a lower-cased header name to the raw field value for one data row.
type Row map[string]string

// RawTable is the transient result of parsing one roster file. It carries no
// business meaning beyond the header/row structure.
type RawTable struct {
	Headers []string
	Rows    []Row
}

// Parse turns delimiter-separated roster content into a RawTable. The first
// line is the header; it must contain every required column and nothing
// outside the allowed set. Blank lines are skipped, short rows are padded
// with empty strings, extra trailing fields are ignored.
func Parse(content string) (RawTable, error) {
	return ParseWithDelimiter(content, DefaultDelimiter)
}

// ParseWithDelimiter parses roster content split on a caller-chosen
// delimiter.
func ParseWithDelimiter(content, delimiter string) (RawTable, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	lines := make([]string, 0, 64)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) < 2 {
		return RawTable{}, fmt.Errorf("%w: need a header line and at least one data row", ErrMalformedInput)
	}

	headers := make([]string, 0, 4)
	for _, token := range strings.Split(lines[0], delimiter) {
		headers = append(headers, strings.ToLower(strings.TrimSpace(token)))
	}

	var missing []string
	for _, required := range requiredColumns {
		if !contains(headers, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return RawTable{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var unknown []string
	for _, header := range headers {
		if !allowedColumns[header] {
			unknown = append(unknown, header)
		}
	}
	if len(unknown) > 0 {
		return RawTable{}, fmt.Errorf("%w: %s", ErrUnknownColumns, strings.Join(unknown, ", "))
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := strings.Split(line, delimiter)
		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(fields) {
				row[header] = strings.TrimSpace(fields[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return RawTable{Headers: headers, Rows: rows}, nil
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
