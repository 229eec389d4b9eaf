package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Creates the platform tables for the configured environment. Run with:
//
//	go run scripts/init_schema.go
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	// Same resolution as config.Load so the server finds these tables.
	prefix := os.Getenv("TABLE_PREFIX")
	if prefix == "" {
		switch env {
		case "prod":
			prefix = "prod_"
		case "test":
			prefix = "test_"
		default:
			prefix = "dev_"
		}
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	schemaSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]sfolders (
			id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			tenant_id   BIGINT NOT NULL,
			parent_id   BIGINT REFERENCES %[1]sfolders(id),
			name        TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS %[1]sfolders_tenant_idx
			ON %[1]sfolders (tenant_id) WHERE deleted_at IS NULL;
		CREATE INDEX IF NOT EXISTS %[1]sfolders_parent_idx
			ON %[1]sfolders (parent_id) WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS %[1]sdocuments (
			id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			tenant_id   BIGINT NOT NULL,
			folder_id   BIGINT NOT NULL REFERENCES %[1]sfolders(id),
			name        TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			size_bytes  BIGINT NOT NULL DEFAULT 0,
			created_by  BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at  TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS %[1]sdocuments_folder_idx
			ON %[1]sdocuments (tenant_id, folder_id) WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS %[1]sfolder_grants (
			id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			tenant_id    BIGINT NOT NULL,
			folder_id    BIGINT NOT NULL REFERENCES %[1]sfolders(id),
			user_id      BIGINT NOT NULL,
			access_level TEXT NOT NULL CHECK (access_level IN ('READ', 'WRITE', 'ADMIN')),
			recursive    BOOLEAN NOT NULL DEFAULT FALSE,
			active       BOOLEAN NOT NULL DEFAULT TRUE,
			granted_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			revoked_at   TIMESTAMPTZ
		);
		-- At most one active grant per (folder, user) pair; revoked rows
		-- stay for audit history.
		CREATE UNIQUE INDEX IF NOT EXISTS %[1]sfolder_grants_active_pair
			ON %[1]sfolder_grants (folder_id, user_id) WHERE active;
		CREATE INDEX IF NOT EXISTS %[1]sfolder_grants_user_idx
			ON %[1]sfolder_grants (tenant_id, user_id) WHERE active;
	`, prefix)

	if _, err := db.Exec(schemaSQL); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	fmt.Printf("Schema created successfully (prefix: %s)\n", prefix)
}
