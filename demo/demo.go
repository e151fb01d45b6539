// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Command demo runs a small end to end demonstration of building and
// executing queries with sqlfrag against an in-memory SQLite database.
package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"github.com/canonical/sqlfrag"
)

type personFilter struct {
	name     string
	minCm    int
	homeTown string
}

// peopleQuery assembles the WHERE clause from the filter fields that are
// set. Unset fields contribute nothing.
func peopleQuery(f personFilter) *sqlfrag.Fragment {
	var where []*sqlfrag.Fragment
	if f.name != "" {
		where = append(where, sqlfrag.MustSQL("name = {}", f.name))
	}
	if f.minCm != 0 {
		where = append(where, sqlfrag.MustSQL("height_cm >= {}", f.minCm))
	}
	if f.homeTown != "" {
		where = append(where, sqlfrag.MustSQL("home_town = {}", f.homeTown))
	}
	return sqlfrag.MustSQL(
		"SELECT name, height_cm, home_town FROM people WHERE {} ORDER BY name",
		sqlfrag.All(where...),
	)
}

func demo() error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(`
		CREATE TABLE people (
			name text,
			height_cm integer,
			home_town text
		);`,
	); err != nil {
		return err
	}

	// One template, filled once per row.
	insert := sqlfrag.MustSQL("INSERT INTO people (name, height_cm, home_town) VALUES ({name}, {height}, {town})").Compile()
	people := []personFilter{
		{"Jim", 150, "Kabul"},
		{"Saba", 162, "Berlin"},
		{"Sophie", 174, "Berlin"},
		{"Kiri", 168, "Cape Town"},
	}
	for _, p := range people {
		text, args, err := insert.Fill(sqlfrag.M{
			"name":   p.name,
			"height": p.minCm,
			"town":   p.homeTown,
		}).Query()
		if err != nil {
			return err
		}
		if _, err := db.Exec(text, args...); err != nil {
			return err
		}
	}

	for _, filter := range []personFilter{
		{},
		{homeTown: "Berlin"},
		{minCm: 160, homeTown: "Berlin"},
	} {
		text, args, err := peopleQuery(filter).Query()
		if err != nil {
			return err
		}
		fmt.Printf("%s %v\n", text, args)

		rows, err := db.Query(text, args...)
		if err != nil {
			return err
		}
		for rows.Next() {
			var name, town string
			var height int
			if err := rows.Scan(&name, &height, &town); err != nil {
				rows.Close()
				return err
			}
			fmt.Printf("  %s (%d cm) from %s\n", name, height, town)
		}
		if err := rows.Close(); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := demo(); err != nil {
		log.Fatal(err)
	}
}
