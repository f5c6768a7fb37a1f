package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Historical spreadsheets came in with several date spellings; try them all.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

type config struct {
	dsn     string
	csvPath string
	dryRun  bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.dsn, "dsn", envDefault("PG_DSN", envDefault("DATABASE_URL", "")), "postgres dsn")
	flag.StringVar(&cfg.csvPath, "csv", "", "path to the expense CSV export")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "parse and report without writing")
	flag.Parse()

	if cfg.dsn == "" {
		log.Fatal("dsn is required (flag or PG_DSN)")
	}
	if cfg.csvPath == "" {
		log.Fatal("csv path is required")
	}

	file, err := os.Open(cfg.csvPath)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, skipped, err := parseCSV(file)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	log.Printf("parsed %d rows, skipped %d", len(rows), skipped)

	if cfg.dryRun {
		return
	}

	db, err := sql.Open("pgx", cfg.dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	inserted := 0
	for _, row := range rows {
		if err := insertExpense(ctx, db, row); err != nil {
			log.Fatalf("insert row %q: %v", row.expenseType, err)
		}
		inserted++
	}
	log.Printf("inserted %d expenses", inserted)
}

type seedRow struct {
	expenseType string
	subtype     string
	amount      float64
	currency    string
	periodStart *time.Time
	periodEnd   *time.Time
	place       string
	comments    string
	createdAt   time.Time
}

// parseCSV expects a header row of
// type,subtype,amount,currency,period_start,period_end,place,comments,created_at
// and tolerates blank optional columns. Rows missing a type or amount are
// skipped, not fatal.
func parseCSV(r io.Reader) ([]seedRow, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []seedRow
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read record: %w", err)
		}

		expenseType := field(record, "type")
		amountRaw := field(record, "amount")
		if expenseType == "" || amountRaw == "" {
			skipped++
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(amountRaw, ",", ""), 64)
		if err != nil {
			skipped++
			continue
		}

		currency := strings.ToUpper(field(record, "currency"))
		if currency == "" {
			currency = "USD"
		}

		createdAt := time.Now().UTC()
		if parsed := parseFlexibleDate(field(record, "created_at")); parsed != nil {
			createdAt = *parsed
		}

		rows = append(rows, seedRow{
			expenseType: expenseType,
			subtype:     field(record, "subtype"),
			amount:      amount,
			currency:    currency,
			periodStart: monthFloor(parseFlexibleDate(field(record, "period_start"))),
			periodEnd:   monthFloor(parseFlexibleDate(field(record, "period_end"))),
			place:       field(record, "place"),
			comments:    field(record, "comments"),
			createdAt:   createdAt,
		})
	}
	return rows, skipped, nil
}

func parseFlexibleDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// monthFloor snaps a parsed date to the first of its month, the granularity
// the period columns store.
func monthFloor(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	floored := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return &floored
}

func insertExpense(ctx context.Context, db *sql.DB, row seedRow) error {
	_, err := db.ExecContext(ctx, `INSERT INTO expenses
		(id, expense_type, subtype, amount, currency, period_start, period_end,
		 place, comments, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		uuid.NewString(), row.expenseType, row.subtype, row.amount, row.currency,
		row.periodStart, row.periodEnd, row.place, row.comments, row.createdAt,
	)
	return err
}

func envDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
