package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"elexmd/internal/config"
	"elexmd/internal/fetch"
	"elexmd/internal/ingest"
	"elexmd/internal/pipeline"
	"elexmd/internal/refdata"
	"elexmd/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "refdata:seed":
		svc := refdata.NewSeedService(db)
		result, err := svc.Seed(cfg.State)
		must(err)
		fmt.Printf("seeded reference data offices=%d parties=%d\n", result.Offices, result.Parties)
	case "raw:fetch":
		svc := fetch.NewService(db, cfg)
		result, err := svc.FetchAndStore(context.Background())
		must(err)
		fmt.Printf("fetch done discovered=%d downloaded=%d dir=%s\n", result.Discovered, result.Downloaded, cfg.RawDir)
	case "raw:load":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "raw results csv path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		count, err := ingest.NewLoader(db).LoadFile(*file)
		must(err)
		fmt.Printf("loaded %d raw results from %s\n", count, *file)
	case "transform:run":
		counts, err := pipeline.NewTransformer(db, cfg).Run()
		must(err)
		fmt.Printf("transform done contests=%d candidates=%d results=%d\n", counts.Contests, counts.Candidates, counts.Results)
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		electionID := fs.String("electionId", "", "election id, e.g. md-2004-11-02-general")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*electionID) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--electionId and --out are required"))
		}
		rows, err := db.GetExportRows(*electionID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no results for election %s", *electionID))
		}
		must(pipeline.ExportResultsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: elexmd <command>")
	fmt.Println("commands:")
	fmt.Println("  refdata:seed")
	fmt.Println("  raw:fetch")
	fmt.Println("  raw:load --file=./data/raw/20041102__md__general__county.csv")
	fmt.Println("  transform:run")
	fmt.Println("  export:xlsx --electionId=md-2004-11-02-general --out=./out/results.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
