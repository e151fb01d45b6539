// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Command example exercises sqlfrag against a real PostgreSQL server,
// the dialect the $N placeholder convention targets. It connects to the
// database named by DATABASE_URL.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/canonical/sqlfrag"
)

func example(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, `
		CREATE TEMPORARY TABLE orders (
			id text,
			event_id text,
			start_time timestamptz
		)`,
	); err != nil {
		return err
	}

	// Bulk insert through UNNEST: one round trip, one parameter per
	// column.
	unnest, err := sqlfrag.Unnest([][]any{
		{"o1", "concert", "2026-08-01T20:00:00Z"},
		{"o2", "concert", "2026-08-02T20:00:00Z"},
		{"o3", "fair", "2026-08-03T09:00:00Z"},
	}, []string{"text", "text", "timestamptz"})
	if err != nil {
		return err
	}
	text, args, err := sqlfrag.MustSQL("INSERT INTO orders SELECT * FROM {}", unnest).Query()
	if err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, text, args...); err != nil {
		return err
	}

	// Prepare once, bind per call. The query text and each slot's
	// position are fixed, so the server-side statement can be reused.
	prepared := sqlfrag.MustSQL(
		"SELECT id FROM orders WHERE event_id = {event} AND start_time >= {from} ORDER BY id",
	).Prepare()
	for _, event := range []string{"concert", "fair"} {
		params, err := prepared.Params(sqlfrag.M{
			"event": event,
			"from":  "2026-08-01T00:00:00Z",
		})
		if err != nil {
			return err
		}
		rows, err := conn.Query(ctx, prepared.SQL(), params...)
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		fmt.Printf("%s orders: %v\n", event, ids)
	}
	return nil
}

func main() {
	if err := example(context.Background()); err != nil {
		log.Fatal(err)
	}
}
