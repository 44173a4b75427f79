package field

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseMatrix reads a whitespace-separated matrix of heights, one row per
// line. Blank lines and lines starting with '#' are skipped. All rows must
// have the same number of columns.
func ParseMatrix(r io.Reader) (*Field, error) {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		row := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("field: line %d: bad value %q: %v", lineNo, p, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("field: read failed: %w", err)
	}
	return FromRows(rows)
}

// WriteMatrix writes the field as a whitespace-separated matrix, one row per
// line, in a format ParseMatrix accepts.
func (f *Field) WriteMatrix(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < f.Rows; i++ {
		for j := 0; j < f.Cols; j++ {
			if j > 0 {
				if _, err := bw.WriteString(" "); err != nil {
					return fmt.Errorf("field: write failed: %w", err)
				}
			}
			if _, err := bw.WriteString(strconv.FormatFloat(f.At(i, j), 'g', -1, 64)); err != nil {
				return fmt.Errorf("field: write failed: %w", err)
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return fmt.Errorf("field: write failed: %w", err)
		}
	}
	return bw.Flush()
}
