package csvstore

import (
	"strings"
)

type Column struct {
	Name string
	// Default fills the column for rows of older files that do not carry it.
	Default string
}

// Schema describes the columns of one CSV file kind, in write order.
// Version is bumped whenever a column is added.
type Schema struct {
	Name    string
	Version int
	Columns []Column
}

func (s Schema) Header() []string {
	header := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		header[i] = c.Name
	}
	return header
}

type Row map[string]string

type Table struct {
	Schema Schema
	Rows   []Row
	// Added lists schema columns the loaded file did not have.
	Added []string
}

func NewTable(schema Schema) *Table {
	return &Table{
		Schema: schema,
		Rows:   []Row{},
	}
}

func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Normalize maps a raw header and records onto the schema: every row gets every
// schema column, missing ones with their default. Columns unknown to the schema are dropped.
func (s Schema) Normalize(header []string, records [][]string) *Table {
	table := NewTable(s)

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}

	for _, c := range s.Columns {
		if _, ok := index[c.Name]; !ok {
			table.Added = append(table.Added, c.Name)
		}
	}

	for _, rec := range records {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(s.Columns))
		for _, c := range s.Columns {
			i, ok := index[c.Name]
			if !ok || i >= len(rec) {
				row[c.Name] = c.Default
				continue
			}
			row[c.Name] = rec[i]
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
