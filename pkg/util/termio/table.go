// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package termio

import (
	"fmt"
	"io"
	"strings"
)

// TablePrinter is useful for printing tables to the terminal.
type TablePrinter struct {
	widths []uint
	// right-align column (e.g. for numbers)
	numeric []bool
	rows    [][]string
}

// NewTablePrinter constructs a new table with a given header row.  The table
// initially has no other rows.
func NewTablePrinter(headers ...string) *TablePrinter {
	p := &TablePrinter{
		widths:  make([]uint, len(headers)),
		numeric: make([]bool, len(headers)),
	}
	//
	p.AddRow(headers...)
	//
	return p
}

// Numeric marks a given column as holding numbers, meaning its cells will be
// right-aligned.
func (p *TablePrinter) Numeric(cols ...uint) *TablePrinter {
	for _, col := range cols {
		p.numeric[col] = true
	}
	//
	return p
}

// AddRow appends a row to this table.
func (p *TablePrinter) AddRow(vals ...string) {
	if len(vals) != len(p.widths) {
		panic("incorrect number of columns")
	}
	// Update column widths
	for i := 0; i < len(p.widths); i++ {
		p.widths[i] = max(p.widths[i], uint(len(vals[i])))
	}
	// Done
	p.rows = append(p.rows, vals)
}

// Get the contents of a given cell in this table
func (p *TablePrinter) Get(col uint, row uint) string {
	return p.rows[row][col]
}

// Height returns the height of this table (including its header).
func (p *TablePrinter) Height() uint {
	return uint(len(p.rows))
}

// SetMaxWidths puts an upper bound on the width of any column.
func (p *TablePrinter) SetMaxWidths(width uint) {
	for i := uint(0); i < uint(len(p.widths)); i++ {
		p.SetMaxWidth(i, width)
	}
}

// SetMaxWidth puts an upper bound on the width of any column.
func (p *TablePrinter) SetMaxWidth(col uint, width uint) {
	p.widths[col] = max(3, min(p.widths[col], width))
}

// Print the table to a given writer.  The header is separated from the
// remaining rows by a rule.
func (p *TablePrinter) Print(w io.Writer) error {
	var out strings.Builder
	//
	for i, row := range p.rows {
		for j, col := range row {
			width := int(p.widths[j])
			// Truncate (if applicable)
			if len(col) > width {
				col = col[0:width-2] + ".."
			}
			//
			if p.numeric[j] {
				fmt.Fprintf(&out, " %*s |", width, col)
			} else {
				fmt.Fprintf(&out, " %-*s |", width, col)
			}
		}
		//
		out.WriteString("\n")
		// Separate header
		if i == 0 {
			for _, width := range p.widths {
				out.WriteString(strings.Repeat("-", int(width)+2) + "+")
			}
			//
			out.WriteString("\n")
		}
	}
	//
	_, err := io.WriteString(w, out.String())
	//
	return err
}
