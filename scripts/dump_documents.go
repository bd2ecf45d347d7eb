//go:build ignore

// Prints the stored documents of a postgres-backed deployment.
// Usage: DATABASE_URL=postgres://... go run scripts/dump_documents.go [name]
package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	query := `SELECT name, version, body, updated_at FROM documents ORDER BY name`
	var args []any
	if len(os.Args) > 1 {
		query = `SELECT name, version, body, updated_at FROM documents WHERE name = $1`
		args = append(args, os.Args[1])
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Fatal("Failed to query documents:", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			name, updatedAt string
			version         int
			body            []byte
		)
		if err := rows.Scan(&name, &version, &body, &updatedAt); err != nil {
			log.Fatal("Failed to scan row:", err)
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(body)
		}
		fmt.Printf("── %s (v%d, updated %s, %d bytes)\n%s\n\n", name, version, updatedAt, len(body), pretty.String())
		count++
	}
	if err := rows.Err(); err != nil {
		log.Fatal("Failed to read rows:", err)
	}

	fmt.Printf("✅ %d documents\n", count)
}
