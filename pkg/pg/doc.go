// Package pg bootstraps the PostgreSQL pool backing the durable message
// transport.
//
// Connect opens a pgx/v5 pool with retries, Migrate applies goose
// migrations from an fs.FS (typically an embed.FS owned by the package that
// defines the schema) and Healthcheck adapts the pool to the readiness probe.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, cfg, queue.Migrations, "migrations", log); err != nil {
//		return err
//	}
package pg
