// Package migrations embeds the SQL schema migrations, one directory per
// storage driver.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
