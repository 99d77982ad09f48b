// lptool maintains the level preload database from the command line:
// rebuilding entries from an asset index dump, inspecting what a level
// would preload, and moving the database in and out of YAML.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"leveltracker.gg/internal/collect"
	"leveltracker.gg/internal/preloaddb"
	"leveltracker.gg/internal/rules"
	"leveltracker.gg/internal/settings"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "rebuild":
			rebuildCmd(os.Args[2:])
			return
		case "show":
			showCmd(os.Args[2:])
			return
		case "export":
			exportCmd(os.Args[2:])
			return
		case "import":
			importCmd(os.Args[2:])
			return
		case "resolve":
			resolveCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func openStore(dataDir, folder string) *preloaddb.Store {
	dbPath, err := settings.ResolveDatabasePath(folder)
	if err != nil {
		fmt.Fprintln(os.Stderr, "resolve database folder:", err)
		os.Exit(1)
	}
	store, err := preloaddb.OpenStore(settings.DatabaseFile(dataDir, dbPath))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	return store
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("lptool", flag.ExitOnError)
	dataDir := fs.String("data", "data", "runtime data directory")
	folder := fs.String("folder", "", "database folder (default _DataLPT)")
	_ = fs.Parse(args)

	store := openStore(*dataDir, *folder)
	defer store.Close()

	levels, err := store.Levels()
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, level := range levels {
		e, ok, err := store.Find(level)
		if err != nil || !ok {
			continue
		}
		fmt.Printf("%s\t%d assets\t%s\n", level, len(e.Assets), e.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
}

func rebuildCmd(args []string) {
	fs := flag.NewFlagSet("rebuild", flag.ExitOnError)
	indexPath := fs.String("index", "", "asset index dump (required)")
	rulesPath := fs.String("rules", "config/rules.yaml", "rules config path")
	dataDir := fs.String("data", "data", "runtime data directory")
	folder := fs.String("folder", "", "database folder (default _DataLPT)")
	level := fs.String("level", "", "rebuild a single level (default: every level in the rules config)")
	dryRun := fs.Bool("dry_run", false, "print the asset list without writing the database")
	_ = fs.Parse(args)

	if strings.TrimSpace(*indexPath) == "" {
		fmt.Fprintln(os.Stderr, "missing -index")
		os.Exit(2)
	}

	idx, err := collect.LoadIndex(*indexPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load index:", err)
		os.Exit(1)
	}
	cfg, err := rules.LoadConfig(*rulesPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load rules:", err)
		os.Exit(1)
	}

	var levels []string
	if strings.TrimSpace(*level) != "" {
		levels = []string{strings.TrimSpace(*level)}
	} else {
		for l := range cfg.Levels {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		fmt.Fprintln(os.Stderr, "no levels to rebuild")
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[rebuild] ", log.LstdFlags)
	c := collect.NewCollector(idx, logger)

	var store *preloaddb.Store
	if !*dryRun {
		store = openStore(*dataDir, *folder)
		defer store.Close()
	}

	for _, l := range levels {
		r := cfg.EffectiveRules(l)
		res := c.BuildLevelAssetList(l, &r)
		if *dryRun {
			fmt.Printf("%s (%d assets, partitioned=%v)\n", res.Level, len(res.Assets), res.Partitioned)
			for _, id := range res.Assets {
				fmt.Printf("  %s\n", id)
			}
			continue
		}
		entry := preloaddb.Entry{
			Level:       res.Level,
			Partitioned: res.Partitioned,
			GeneratedAt: res.GeneratedAt,
			Assets:      res.Assets,
			Rules:       r,
		}
		if err := store.Upsert(entry); err != nil {
			fmt.Fprintln(os.Stderr, "persist:", err)
			os.Exit(1)
		}
		fmt.Printf("%s: %d assets\n", res.Level, len(res.Assets))
	}
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	dataDir := fs.String("data", "data", "runtime data directory")
	folder := fs.String("folder", "", "database folder (default _DataLPT)")
	level := fs.String("level", "", "level package path (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*level) == "" {
		fmt.Fprintln(os.Stderr, "missing -level")
		os.Exit(2)
	}

	store := openStore(*dataDir, *folder)
	defer store.Close()

	e, ok, err := store.Find(strings.TrimSpace(*level))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "no entry for", *level)
		os.Exit(1)
	}
	fmt.Printf("level: %s\npartitioned: %v\ngenerated: %s\nassets: %d\n",
		e.Level, e.Partitioned, e.GeneratedAt.Format("2006-01-02 15:04:05"), len(e.Assets))
	for _, id := range e.Assets {
		fmt.Printf("  %s\n", id)
	}
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dataDir := fs.String("data", "data", "runtime data directory")
	folder := fs.String("folder", "", "database folder (default _DataLPT)")
	out := fs.String("out", "preload.yaml", "output YAML path")
	_ = fs.Parse(args)

	store := openStore(*dataDir, *folder)
	defer store.Close()

	db, err := store.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if err := preloaddb.ExportYAML(db, *out); err != nil {
		fmt.Fprintln(os.Stderr, "export:", err)
		os.Exit(1)
	}
	fmt.Printf("exported %d levels to %s\n", db.Len(), *out)
}

func importCmd(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dataDir := fs.String("data", "data", "runtime data directory")
	folder := fs.String("folder", "", "database folder (default _DataLPT)")
	in := fs.String("in", "preload.yaml", "input YAML path")
	_ = fs.Parse(args)

	db, err := preloaddb.ImportYAML(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "import:", err)
		os.Exit(1)
	}

	store := openStore(*dataDir, *folder)
	defer store.Close()

	if err := store.Save(db); err != nil {
		fmt.Fprintln(os.Stderr, "persist:", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d levels from %s\n", db.Len(), *in)
}

func resolveCmd(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	folder := fs.String("folder", "", "database folder (default _DataLPT)")
	_ = fs.Parse(args)

	path, err := settings.ResolveDatabasePath(*folder)
	if err != nil {
		fmt.Fprintln(os.Stderr, "resolve:", err)
		os.Exit(1)
	}
	fmt.Println(path)
}
