package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/souk-search/pkg/catalog"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	seedPath := fs.String("seed", "", "seed YAML file with categories and services")
	dbPath := fs.String("db", "catalog.db", "catalog database to write")
	fs.Parse(args)

	if *seedPath == "" {
		fmt.Println("Usage :")
		fmt.Println("  souk import -seed <seed.yaml> [-db <catalog.db>]")
		return
	}

	stats, err := runImport(*seedPath, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d categories, %d services -> %s\n", stats.Categories, stats.Services, *dbPath)
	fmt.Println("send SIGHUP to a running server to pick up the changes")
}

func runImport(seedPath, dbPath string) (catalog.ImportStats, error) {
	seed, err := catalog.LoadSeed(seedPath)
	if err != nil {
		return catalog.ImportStats{}, err
	}

	store, err := catalog.OpenStore(dbPath)
	if err != nil {
		return catalog.ImportStats{}, err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return store.Import(ctx, seed)
}
