// Package db provides the embedded database schema and the default catalog
// dataset used to seed an empty store.
package db

import _ "embed"

// Schema contains the DDL statements for the postgres blob store backend.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the bundled bootstrap dataset: an array of product-like
// records in the same shape the original products.json shipped with.
//
//go:embed seed/products.json
var SeedProducts []byte
