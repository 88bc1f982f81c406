package fsm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyMatrix is returned by InitWithMatrix when there is no header row
var ErrEmptyMatrix = errors.New("matrix has no header row")

// InitWithMatrix populates the machine from a state-by-state matrix.
//
// matrix[0] is the header row; matrix[0][1:] are the "to" states, which are
// all added. Each following row starts with its "from" state and holds one
// cell per header column. A non-empty cell "input/output" declares one
// transition; either side may be omitted ("press", "press/boom"). Inputs and
// outputs named in cells are declared as they are met.
//
// Malformed cells and rows naming unknown states are skipped and reported
// in the returned error; everything else is still applied.
//
//	matrix := [][]string{
//	    {"",      "idle",  "armed", "fired"},
//	    {"idle",  "",      "press", ""},
//	    {"armed", "press", "",      "release/boom"},
//	}
func (m *Machine) InitWithMatrix(matrix [][]string) error {
	if len(matrix) == 0 || len(matrix[0]) < 2 {
		return ErrEmptyMatrix
	}
	header := matrix[0]
	for _, name := range header[1:] {
		m.AddState(name)
	}

	var errs []error
	for i, row := range matrix[1:] {
		if len(row) == 0 {
			continue
		}
		from := row[0]
		if !m.HasState(from) {
			errs = append(errs, &DefinitionError{
				Code:    ErrCodeUnknownState,
				Message: fmt.Sprintf("matrix row %d: unknown state %q", i+1, from),
			})
			continue
		}
		for j := 1; j < len(header) && j < len(row); j++ {
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				continue
			}
			on, out, err := ParseCell(cell)
			if err != nil {
				errs = append(errs, &DefinitionError{
					Code: ErrCodeMalformedCell,
					Message: fmt.Sprintf("matrix cell [%d][%d]: %v",
						i+1, j, err),
				})
				continue
			}
			m.AddInput(on)
			m.AddOutput(out)
			m.AddTransition(from, header[j], on, out)
		}
	}
	return errors.Join(errs...)
}

// ParseCell splits a matrix cell "input/output" into its lexemes. The input
// is required; the output is optional
func ParseCell(cell string) (on, out Lexeme, err error) {
	parts := strings.Split(cell, "/")
	if len(parts) > 2 {
		return "", "", fmt.Errorf("%q: more than one '/'", cell)
	}
	on = Lexeme(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		out = Lexeme(strings.TrimSpace(parts[1]))
	}
	if on == "" {
		return "", "", fmt.Errorf("%q: missing input", cell)
	}
	return on, out, nil
}

// FormatCell is the inverse of ParseCell
func FormatCell(on, out Lexeme) string {
	if out == "" {
		return string(on)
	}
	return string(on) + "/" + string(out)
}

// Matrix exports the machine as a state-by-state matrix that
// InitWithMatrix accepts
func (m *Machine) Matrix() [][]string {
	header := append([]string{""}, m.order...)
	res := [][]string{header}
	col := map[string]int{}
	for i, s := range m.order {
		col[s] = i + 1
	}
	for _, from := range m.order {
		row := make([]string, len(header))
		row[0] = from
		for _, t := range m.TransitionsFrom(from) {
			// a state-by-state matrix holds one transition per pair
			if row[col[t.To]] == "" {
				row[col[t.To]] = FormatCell(t.On, t.Output)
			}
		}
		res = append(res, row)
	}
	return res
}
