// Package migrations holds the goose migration chain of the invitations schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Dialect is the goose dialect of the database being migrated. Go migrations
// read it to skip statements the dialect cannot express.
var Dialect string
