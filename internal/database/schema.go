package database

import (
	"embed"
	"fmt"
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// schemaFiles maps database names to their schema file
var schemaFiles = map[string]string{
	"prefill": "schemas/prefill_schema.sql",
	"audit":   "schemas/audit_schema.sql",
}

// Schema returns the DDL for the named database. Repository tests apply it
// to in-memory connections so they run against the production tables.
func Schema(name string) (string, error) {
	file, ok := schemaFiles[name]
	if !ok {
		return "", fmt.Errorf("no schema for database %q", name)
	}
	content, err := schemaFS.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read schema %s: %w", file, err)
	}
	return string(content), nil
}
