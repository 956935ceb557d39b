// Package migrations applies the embedded archive schemas.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed postgres/*.sql clickhouse/*.sql
var schemas embed.FS

const (
	postgresDir   = "postgres"
	clickhouseDir = "clickhouse"
)

// execFunc runs one unit of SQL from file.
type execFunc func(ctx context.Context, file, sql string) error

// sqlFiles lists the .sql files under dir in lexical order.
func sqlFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// apply runs every file under dir through exec, one statement at a time when
// split is set and one file at a time otherwise. Files are expected to be
// idempotent.
func apply(ctx context.Context, fsys fs.FS, dir string, split bool, exec execFunc) error {
	files, err := sqlFiles(fsys, dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		data, err := fs.ReadFile(fsys, path.Join(dir, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}

		units := []string{string(data)}
		if split {
			units = splitStatements(string(data))
		} else if strings.TrimSpace(units[0]) == "" {
			continue
		}
		for _, sql := range units {
			if err := exec(ctx, file, sql); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
		}
	}
	return nil
}

// splitStatements splits sql on semicolons outside single-quoted literals
// and drops "--" comments and empty statements.
func splitStatements(sql string) []string {
	var (
		stmts    []string
		cur      strings.Builder
		inString bool
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case inString:
			cur.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(sql) && sql[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
					continue
				}
				inString = false
			}
		case ch == '\'':
			inString = true
			cur.WriteByte(ch)
		case ch == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case ch == ';':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return stmts
}
