package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordgrid/internal/board"
	"github.com/robalobadob/wordgrid/internal/catalog"
	"github.com/robalobadob/wordgrid/internal/db"
	"github.com/robalobadob/wordgrid/internal/httpserver"
	"github.com/robalobadob/wordgrid/internal/live"
	"github.com/robalobadob/wordgrid/internal/sessions"
	"github.com/robalobadob/wordgrid/internal/store"
)

func main() {
	_ = godotenv.Load()
	setupLogging()

	cfg := loadConfig()
	root := &cli.Command{
		Name:  "wordgrid",
		Usage: "Word grid puzzle editor and play server",
		Commands: []*cli.Command{
			serveCommand(cfg),
			checkCommand(),
			samplesCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, cfg)
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("wordgrid exited")
	}
}

func serveCommand(cfg config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: cfg.Port, Usage: "HTTP listen port"},
			&cli.StringFlag{Name: "db-path", Value: cfg.DBPath, Usage: `SQLite database path ("" for in-memory)`},
			&cli.StringFlag{Name: "client-origin", Value: cfg.ClientOrigin, Usage: "allowed CORS origin"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.Port = c.String("port")
			cfg.DBPath = c.String("db-path")
			cfg.ClientOrigin = c.String("client-origin")
			return runServer(ctx, cfg)
		},
	}
}

func runServer(ctx context.Context, cfg config) error {
	if err := catalog.Init(); err != nil {
		return fmt.Errorf("load samples: %w", err)
	}
	cat, _ := catalog.Default()
	nSamples, nWords := cat.Stats()
	log.Info().Int("samples", nSamples).Int("words", nWords).Msg("sample catalog loaded")

	opts := httpserver.Options{
		Catalog:      cat,
		ClientOrigin: cfg.ClientOrigin,
		DailySalt:    cfg.DailySalt,
		Live:         live.NewRegistry(live.Config{Secret: []byte(cfg.LiveSecret)}, nil),
	}

	if cfg.DBPath != "" {
		conn, err := db.OpenAndMigrate(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()
		opts.Boards = store.NewSQLStore(conn)
		opts.Sessions = sessions.NewSQLStore(conn, cfg.SessionCap)
		log.Info().Str("path", cfg.DBPath).Msg("using sqlite storage")
	} else {
		opts.Boards = store.NewMemoryStore()
		opts.Sessions = sessions.NewRing(cfg.SessionCap)
		log.Warn().Msg("no DB_PATH; boards and sessions are kept in memory")
	}

	srv := httpserver.New(opts)
	log.Info().Str("port", cfg.Port).Msg("starting wordgrid server")
	return srv.Run(ctx, ":"+cfg.Port)
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Validate a board export (JSON or YAML) and list every problem",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("check: missing FILE")
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			e, err := decodeExport(path, raw)
			if err != nil {
				return err
			}
			return reportAudit(os.Stdout, path, e)
		},
	}
}

func decodeExport(path string, raw []byte) (board.Export, error) {
	var e board.Export
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &e); err != nil {
			return e, fmt.Errorf("%s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(raw, &e); err != nil {
			return e, fmt.Errorf("%s: %w", path, err)
		}
	}
	return e, nil
}

func reportAudit(w io.Writer, path string, e board.Export) error {
	b, problems := board.Audit(e)
	for _, p := range problems {
		fmt.Fprintf(w, "%s: %v\n", path, p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s: %d problem(s)", path, len(problems))
	}
	st := b.Stats()
	fmt.Fprintf(w, "%s: ok (%dx%d, %d words, %d playable cells)\n", path, b.Rows, b.Columns, st.Words, st.PlayableCells)
	return nil
}

func samplesCommand() *cli.Command {
	return &cli.Command{
		Name:  "samples",
		Usage: "List the sample catalog",
		Action: func(ctx context.Context, c *cli.Command) error {
			cat, err := catalog.Default()
			if err != nil {
				return err
			}
			for _, b := range cat.All() {
				fmt.Printf("%-12s %-20s %2dx%-2d %d words\n", b.ID, b.Title, b.Rows, b.Columns, len(b.Words))
			}
			return nil
		},
	}
}
