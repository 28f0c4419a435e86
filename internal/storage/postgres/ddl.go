package postgres

import (
	"fmt"
	"strings"
)

// createTableSQL renders CREATE TABLE IF NOT EXISTS with text columns.
func createTableSQL(table string, columns []string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("postgres ddl: table must not be empty")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return "", fmt.Errorf("postgres ddl: column %d has an empty name", i)
		}
		defs[i] = pgIdent(c) + " text NULL"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", pgFQN(table), strings.Join(defs, ",\n  ")), nil
}
