package mssql

import (
	"fmt"
	"strings"
)

// createTableSQL renders a guarded CREATE TABLE with NVARCHAR(MAX) columns.
// SQL Server has no CREATE TABLE IF NOT EXISTS, so the statement checks
// OBJECT_ID first.
func createTableSQL(table string, columns []string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("mssql ddl: table must not be empty")
	}
	if len(columns) == 0 {
		return "", fmt.Errorf("mssql ddl: at least one column is required")
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return "", fmt.Errorf("mssql ddl: column %d has an empty name", i)
		}
		defs[i] = msIdent(c) + " NVARCHAR(MAX) NULL"
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);",
		strings.ReplaceAll(table, "'", "''"),
		msFQN(table),
		strings.Join(defs, ",\n  "),
	), nil
}
