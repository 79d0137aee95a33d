// Command btrdb is a small demo of the embedded store: insert a handful of
// values, traverse them in order, look a few up, and delete one.
package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"

	"btrdb/pkg/db"
	"btrdb/pkg/errs"
)

func main() {
	database, err := db.Open(db.Options{Path: "data/db", Logger: slog.Default()})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	root := database.Connect()

	fruits := map[string]any{
		"apple":  "red",
		"banana": "yellow",
		"grape":  "purple",
		"orange": "orange",
		"cherry": "red",
	}

	fmt.Println("Inserting key-value pairs...")
	for key, value := range fruits {
		if _, err := root.Insert(key, value); err != nil && !errors.Is(err, errs.ErrDuplicateKey) {
			log.Printf("failed to insert %s: %v", key, err)
		}
	}

	fmt.Println("\nDatabase contents:")
	for k, v := range root.Items(false) {
		kv, err := k.Get(true)
		if err != nil {
			log.Fatalf("failed to decode key: %v", err)
		}
		vv, err := v.Get(true)
		if err != nil {
			log.Fatalf("failed to decode value: %v", err)
		}
		fmt.Printf("%v -> %v\n", kv, vv)
	}

	searchKeys := []string{"apple", "banana", "mango"}
	fmt.Println("\nSearch results:")
	for _, key := range searchKeys {
		d, err := root.Search(key)
		if err != nil {
			if errors.Is(err, errs.ErrKeyNotFound) {
				fmt.Printf("not found: %s\n", key)
				continue
			}
			log.Fatalf("search failed: %v", err)
		}
		v, err := d.Get(true)
		if err != nil {
			log.Fatalf("failed to decode value: %v", err)
		}
		fmt.Printf("found: %s -> %v\n", key, v)
	}

	fmt.Println("\nTesting deletion...")
	if _, err := root.Delete("apple"); err != nil {
		log.Printf("failed to delete apple: %v", err)
	}

	if ok, err := root.Contains("apple"); err != nil {
		log.Fatalf("contains failed: %v", err)
	} else if ok {
		fmt.Println("apple still exists")
	} else {
		fmt.Println("apple successfully deleted")
	}
}
