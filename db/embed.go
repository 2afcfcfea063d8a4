// Package db provides the embedded database schema and seed data.
package db

import _ "embed"

// Schema contains the DDL statements for the customer, book and orders tables.
// Every statement is idempotent, so it is safe to apply on each start-up.
//
//go:embed migrations/001_schema.sql
var Schema string

// Seed is the Madang sample data set in the seed file format.
//
//go:embed seed/madang.yaml
var Seed []byte
