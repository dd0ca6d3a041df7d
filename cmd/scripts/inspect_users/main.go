package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/mlekodaj/gatepass/internal/db"
	"github.com/mlekodaj/gatepass/internal/utils"
)

// Prints the live schema of the users relation and a row count, for
// checking a deployment without a psql session.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pg := db.NewPostgres(cfg.Postgres)
	defer pg.Close()

	pool, err := pg.Acquire(ctx)
	if err != nil {
		log.Fatalf("acquire: %v", err)
	}

	const query = `SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = 'public' AND table_name = 'users' ORDER BY ordinal_position`
	rows, err := pool.Query(ctx, query)
	if err != nil {
		log.Fatalf("query columns: %v", err)
	}
	defer rows.Close()

	fmt.Println("columns:")
	for rows.Next() {
		var name, dataType string
		if err := rows.Scan(&name, &dataType); err != nil {
			log.Fatalf("scan: %v", err)
		}
		fmt.Printf("- %s (%s)\n", name, dataType)
	}
	if rows.Err() != nil {
		log.Fatalf("rows: %v", rows.Err())
	}

	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		log.Fatalf("count users: %v", err)
	}
	fmt.Printf("registered users: %d\n", count)
}
