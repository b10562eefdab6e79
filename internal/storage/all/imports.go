// Package all registers every storage backend. Importing it for side
// effects is how binaries opt in to the full backend set:
//
//	import _ "useringest/internal/storage/all"
package all

import (
	_ "useringest/internal/storage/mssql"
	_ "useringest/internal/storage/mysql"
	_ "useringest/internal/storage/postgres"
	_ "useringest/internal/storage/sqlite"
)
