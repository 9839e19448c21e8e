package database

import (
	"fmt"
	"strings"
)

// BuildMultiRowInsert returns "INSERT INTO table (c1, c2) VALUES (?, ?), (?, ?)" for rows rows.
func BuildMultiRowInsert(table string, columns []string, rows int) string {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := make([]string, rows)
	for i := range values {
		values[i] = placeholder
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(columns, ", "), strings.Join(values, ", "))
}
