// Package schema embeds the database DDL applied by the migrate command.
package schema

import _ "embed"

//go:embed taskvine.sql
var DDL string
