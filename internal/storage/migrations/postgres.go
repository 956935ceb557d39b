package migrations

import (
	"context"

	"solana-launch-monitor/internal/storage/postgres"
)

// RunPostgresMigrations creates the launch_events archive. Each file is sent
// as one multi-statement Exec.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	return apply(ctx, schemas, postgresDir, false, func(ctx context.Context, _, sql string) error {
		_, err := pool.Exec(ctx, sql)
		return err
	})
}
