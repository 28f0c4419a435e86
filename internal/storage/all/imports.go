// Package all wires every built-in export sink into the storage factory.
//
// Importing it for side effects runs the init functions of each backend,
// which register their factories and CREATE TABLE builders. After the
// import the following kinds are available:
//
//   - "sqlite"   (reportcache/internal/storage/sqlite)
//   - "postgres" (reportcache/internal/storage/postgres)
//   - "mssql"    (reportcache/internal/storage/mssql)
//
// A binary that needs only a subset can import the backends directly.
package all

import (
	_ "reportcache/internal/storage/mssql"
	_ "reportcache/internal/storage/postgres"
	_ "reportcache/internal/storage/sqlite"
)
