package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leveltracker.gg/internal/collect"
	"leveltracker.gg/internal/eventlog"
	"leveltracker.gg/internal/loader"
	"leveltracker.gg/internal/preloaddb"
	"leveltracker.gg/internal/rules"
	"leveltracker.gg/internal/session"
	"leveltracker.gg/internal/settings"
	"leveltracker.gg/internal/transport/ws"
	"leveltracker.gg/internal/watch"
)

func main() {
	var (
		configPath = flag.String("config", "config/preloadd.yaml", "settings file path")
		addr       = flag.String("addr", "", "listen address (overrides settings)")
		indexPath  = flag.String("index", "", "asset index dump for rebuild-on-change (optional)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[preloadd] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := settings.Load(*configPath)
	if err != nil {
		logger.Fatalf("load settings: %v", err)
	}
	if strings.TrimSpace(*addr) != "" {
		cfg.ListenAddr = strings.TrimSpace(*addr)
	}

	// An unresolvable database folder is not fatal. Sessions degrade to
	// single-unit preloads until the configuration is fixed.
	var store *preloaddb.Store
	db := preloaddb.New()
	dbPath, err := settings.ResolveDatabasePath(cfg.DatabaseFolder)
	if err != nil {
		logger.Printf("database unavailable: %v", err)
		db = nil
	} else {
		store, err = preloaddb.OpenStore(settings.DatabaseFile(cfg.DataDir, dbPath))
		if err != nil {
			logger.Printf("database unavailable: open %s: %v", dbPath, err)
			db = nil
		} else {
			defer store.Close()
			db, err = store.Load()
			if err != nil {
				logger.Fatalf("read database: %v", err)
			}
			logger.Printf("database %s: %d levels", dbPath, db.Len())
		}
	}

	rulesCfg, err := rules.LoadConfig(cfg.RulesConfig)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("rules config not found (%s); using defaults", cfg.RulesConfig)
			rulesCfg = rules.Config{Defaults: rules.Default()}
		} else {
			logger.Fatalf("load rules: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Owner goroutine. Every session mutation and every callback funnels
	// through this channel.
	commands := make(chan func(), 1024)
	dispatch := func(fn func()) {
		select {
		case commands <- fn:
		case <-ctx.Done():
		}
	}

	fileLoader := &loader.FileLoader{Root: cfg.ContentRoot, Dispatch: dispatch, Log: logger}
	act := &logActivator{log: logger, dispatch: dispatch}
	mgr := session.NewManager(logger, fileLoader, act, entrySource(db))

	var events *eventlog.SessionLogger
	if cfg.EventLog {
		events = eventlog.NewSessionLogger(cfg.DataDir)
		defer events.Close()
		events.Attach(mgr)
	}

	srv := ws.NewServer(mgr, dispatch, logger)

	var idx *collect.MemoryIndex
	if strings.TrimSpace(*indexPath) != "" {
		idx, err = collect.LoadIndex(*indexPath)
		if err != nil {
			logger.Fatalf("load asset index: %v", err)
		}
		rebuildAll(idx, rulesCfg, db, store, events, logger)
	}

	if cfg.WatchRules {
		w, err := watch.New(cfg.RulesConfig)
		if err != nil {
			logger.Printf("rules watcher disabled: %v", err)
		} else {
			defer w.Close()
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case path, ok := <-w.Events:
						if !ok {
							return
						}
						dispatch(func() { reloadRules(path, &rulesCfg, idx, db, store, events, logger) })
					case err, ok := <-w.Errors:
						if !ok {
							return
						}
						logger.Printf("rules watcher: %v", err)
					}
				}
			}()
		}
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-commands:
				fn()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", srv.Handler())

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = httpSrv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", cfg.ListenAddr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// entrySource keeps a typed nil out of the manager when the database
// is unavailable.
func entrySource(db *preloaddb.Database) session.EntrySource {
	if db == nil {
		return nil
	}
	return db
}

// rebuildAll regenerates every level named in the rules config from
// the asset index and persists the result.
func rebuildAll(idx *collect.MemoryIndex, cfg rules.Config, db *preloaddb.Database, store *preloaddb.Store, events *eventlog.SessionLogger, logger *log.Logger) {
	if db == nil {
		logger.Printf("rebuild skipped: database unavailable")
		return
	}
	c := collect.NewCollector(idx, logger)
	for level := range cfg.Levels {
		r := cfg.EffectiveRules(level)
		res := c.BuildLevelAssetList(level, &r)
		entry := preloaddb.Entry{
			Level:       res.Level,
			Partitioned: res.Partitioned,
			GeneratedAt: res.GeneratedAt,
			Assets:      res.Assets,
			Rules:       r,
		}
		db.Upsert(entry)
		if store != nil {
			if err := store.Upsert(entry); err != nil {
				logger.Printf("persist %s: %v", level, err)
			}
		}
		if events != nil {
			_ = events.Rebuilt(level, len(res.Assets))
		}
	}
}

// reloadRules re-reads the rules file after a change and rebuilds when
// an asset index is loaded. A broken config keeps the previous one.
func reloadRules(path string, cfg *rules.Config, idx *collect.MemoryIndex, db *preloaddb.Database, store *preloaddb.Store, events *eventlog.SessionLogger, logger *log.Logger) {
	next, err := rules.LoadConfig(path)
	if err != nil {
		logger.Printf("rules reload rejected: %v", err)
		return
	}
	*cfg = next
	logger.Printf("rules reloaded: %d levels", len(next.Levels))
	if idx != nil {
		rebuildAll(idx, next, db, store, events, logger)
	}
}
