package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ThreatAtlas/atlas-backend/internal/actors"
	"github.com/ThreatAtlas/atlas-backend/internal/alias"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

// CLI flags
var (
	csvPath     = flag.String("csv", "", "Path to the actor CSV (required)")
	dsn         = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	dryRun      = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	aliasPath   = flag.String("aliases", os.Getenv("ALIAS_TABLE_PATH"), "Alias table for the dry-run plan (default: env ALIAS_TABLE_PATH, else embedded)")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
)

// CSV contract
// display_name,scope_statement,aliases,is_tracked,notebook_status
// aliases are semicolon-separated; is_tracked and notebook_status may be blank

type ActorCSV struct {
	DisplayName    string
	CanonicalName  string
	ScopeStatement string
	Aliases        []string
	IsTracked      bool
	NotebookStatus string
}

var validStatuses = map[string]struct{}{
	actors.StatusIdle:    {},
	actors.StatusRunning: {},
	actors.StatusReady:   {},
	actors.StatusWarning: {},
	actors.StatusError:   {},
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *csvPath == "" {
		fatalf("--csv is required")
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		fatalf("open: %v", err)
	}
	rows, err := loadCSV(f)
	f.Close()
	if err != nil {
		fatalf("CSV error: %v", err)
	}

	if err := validateRows(rows); err != nil {
		fatalf("CSV validation failed: %v", err)
	}

	fmt.Printf("Loaded %d actors from %s\n", len(rows), *csvPath)

	if *dryRun {
		table, err := alias.Load(*aliasPath)
		if err != nil {
			fatalf("alias table: %v", err)
		}
		printPlan(os.Stdout, rows, table)
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}

	inserted, err := insertAll(ctx, tx, rows)
	if err != nil {
		fatalf("insert actors: %v", err)
	}

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}
	fmt.Printf("Seed complete: %d inserted, %d already present\n", inserted, len(rows)-inserted)
}

func loadCSV(src io.Reader) ([]ActorCSV, error) {
	r := csv.NewReader(bufio.NewReader(src))
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	required := []string{"display_name", "scope_statement", "aliases", "is_tracked", "notebook_status"}
	for _, k := range required {
		if _, ok := idx[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	var out []ActorCSV
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}

		row := ActorCSV{
			DisplayName:    strings.TrimSpace(rec[idx["display_name"]]),
			ScopeStatement: strings.TrimSpace(rec[idx["scope_statement"]]),
			NotebookStatus: strings.ToLower(strings.TrimSpace(rec[idx["notebook_status"]])),
		}
		row.CanonicalName = alias.Normalize(row.DisplayName)
		if row.NotebookStatus == "" {
			row.NotebookStatus = actors.StatusIdle
		}

		if raw := strings.TrimSpace(rec[idx["is_tracked"]]); raw != "" {
			tracked, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: is_tracked %q: %w", line, raw, err)
			}
			row.IsTracked = tracked
		}

		for _, p := range strings.Split(rec[idx["aliases"]], ";") {
			if a := strings.TrimSpace(p); a != "" {
				row.Aliases = append(row.Aliases, a)
			}
		}

		out = append(out, row)
	}
	return out, nil
}

func validateRows(rows []ActorCSV) error {
	if len(rows) == 0 {
		return fmt.Errorf("CSV has no data rows")
	}
	seen := make(map[string]struct{}, len(rows))
	for i, r := range rows {
		if r.DisplayName == "" {
			return fmt.Errorf("row %d: display_name is empty", i+2)
		}
		if r.CanonicalName == "" {
			return fmt.Errorf("row %d: display_name %q has no letters or digits", i+2, r.DisplayName)
		}
		if _, ok := validStatuses[r.NotebookStatus]; !ok {
			return fmt.Errorf("row %d: unknown notebook_status %q", i+2, r.NotebookStatus)
		}
		if _, dup := seen[r.CanonicalName]; dup {
			return fmt.Errorf("row %d: duplicate actor '%s'", i+2, r.DisplayName)
		}
		seen[r.CanonicalName] = struct{}{}
	}
	return nil
}

// printPlan shows where each actor would land on the map.
func printPlan(w io.Writer, rows []ActorCSV, table alias.Table) {
	mapped := 0
	fmt.Fprintln(w, "Plan preview:")
	for _, r := range rows {
		place := "(not mapped)"
		if e, ok := table.Match(r.DisplayName); ok {
			place = e.Place + " / " + e.Region
			mapped++
		}
		fmt.Fprintf(w, "  %-32s %-8s %s\n", r.DisplayName, r.NotebookStatus, place)
	}
	fmt.Fprintf(w, "  Actors to insert: %d (%d mapped)\n", len(rows), mapped)
	fmt.Fprintln(w, "  Table affected: atlas.actor_profiles (existing canonical names are skipped)")
}

func insertAll(ctx context.Context, tx *sql.Tx, rows []ActorCSV) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO atlas.actor_profiles
			(id, display_name, canonical_name, aliases, scope_statement, is_tracked, notebook_status, notebook_updated_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
		ON CONFLICT (canonical_name) DO NOTHING`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range rows {
		res, err := stmt.ExecContext(ctx, uuid.New(), r.DisplayName, r.CanonicalName,
			pq.Array(r.Aliases), r.ScopeStatement, r.IsTracked, r.NotebookStatus)
		if err != nil {
			return inserted, fmt.Errorf("insert actor '%s': %w", r.DisplayName, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
