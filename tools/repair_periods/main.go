package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Legacy rows stored period_end as the first day of the last covered month
// (inclusive). The current encoding is exclusive: period_end points at the
// first day of the month after the last covered month. This tool shifts
// qualifying period_end values forward one month; the created-before cutoff
// keeps rows written under the new encoding untouched.
type config struct {
	dsn    string
	before string
	dryRun bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.dsn, "dsn", envDefault("PG_DSN", envDefault("DATABASE_URL", "")), "postgres dsn")
	flag.StringVar(&cfg.before, "created-before", "", "only touch rows created before this date (2006-01-02); required")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "report without writing")
	flag.Parse()

	if cfg.dsn == "" {
		log.Fatal("dsn is required (flag or PG_DSN)")
	}
	if cfg.before == "" {
		log.Fatal("created-before is required; pass the migration date")
	}
	cutoff, err := time.Parse("2006-01-02", cfg.before)
	if err != nil {
		log.Fatalf("invalid created-before: %v", err)
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT id, period_start, period_end
		FROM expenses
		WHERE period_start IS NOT NULL AND period_end IS NOT NULL
		  AND created_at < $1`, cutoff)
	if err != nil {
		log.Fatalf("select candidates: %v", err)
	}
	defer rows.Close()

	type candidate struct {
		id     string
		newEnd time.Time
	}
	var candidates []candidate
	for rows.Next() {
		var id string
		var start, end time.Time
		if err := rows.Scan(&id, &start, &end); err != nil {
			log.Fatalf("scan candidate: %v", err)
		}
		// Inclusive encoding: end names the last covered month, so
		// end >= start on the first of a month.
		if end.Day() != 1 || end.Before(start) {
			continue
		}
		candidates = append(candidates, candidate{
			id:     id,
			newEnd: end.AddDate(0, 1, 0),
		})
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("iterate candidates: %v", err)
	}

	log.Printf("found %d rows with inclusive period_end", len(candidates))
	if cfg.dryRun {
		for _, c := range candidates {
			log.Printf("would repair %s -> %s", c.id, c.newEnd.Format("2006-01-02"))
		}
		return
	}

	repaired := 0
	for _, c := range candidates {
		if _, err := db.ExecContext(ctx, `UPDATE expenses SET period_end = $2, updated_at = now() WHERE id = $1`, c.id, c.newEnd); err != nil {
			log.Fatalf("update %s: %v", c.id, err)
		}
		repaired++
	}
	log.Printf("repaired %d rows", repaired)
}

func envDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
