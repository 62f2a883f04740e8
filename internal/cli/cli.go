// Package cli dispatches snap2cmd's subcommands, grounded on the
// teacher's cli.Execute(args) style: a flag.FlagSet per subcommand,
// log.Printf status lines, and small integer exit codes. Trimmed from
// the teacher's nine subcommands (prepare/migrate/cold-import/
// replicate/check/status/rollback/dashboard/compare-keys) down to the
// three this tool has: dump, replay, version.
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"snap2cmd/internal/config"
	"snap2cmd/internal/logger"
	"snap2cmd/internal/rdb"
	"snap2cmd/internal/redisx"
	"snap2cmd/internal/sink"
)

const version = "snap2cmd 0.1.0-dev"

// Execute dispatches CLI subcommands.
func Execute(args []string) int {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[snap2cmd] ")

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "dump":
		return runDump(args[1:])
	case "replay":
		return runReplay(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return 0
	case "version", "--version", "-v":
		fmt.Println(version)
		return 0
	default:
		log.Printf("Unknown subcommand: %s", args[0])
		printUsage()
		return 1
	}
}

// runDump decodes a snapshot file and writes the projected command
// argv sequence as text, one command per line, to stdout or --out.
func runDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	var configPath, rdbPath, outPath string
	fs.StringVar(&configPath, "config", "", "Configuration file path (YAML); overridden by --rdb when set")
	fs.StringVar(&configPath, "c", "", "Configuration file path (YAML)")
	fs.StringVar(&rdbPath, "rdb", "", "Snapshot file path (overrides config source.path)")
	fs.StringVar(&outPath, "out", "", "Output file for the command stream (defaults to stdout)")
	if err := fs.Parse(args); err != nil {
		return errorToExitCode(err)
	}

	snapshotPath, _, err := resolveSnapshotPath(configPath, rdbPath)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}

	f, err := os.Open(snapshotPath)
	if err != nil {
		log.Printf("Failed to open snapshot: %v", err)
		return 1
	}
	defer f.Close()

	out := os.Stdout
	if outPath != "" {
		w, err := os.Create(outPath)
		if err != nil {
			log.Printf("Failed to create output file: %v", err)
			return 1
		}
		defer w.Close()
		out = w
	}
	bw := bufio.NewWriter(out)
	defer bw.Flush()

	written, err := decodeAndProject(f, func(cmd rdb.Command) error {
		_, werr := bw.WriteString(renderCommand(cmd))
		return werr
	})
	if err != nil {
		log.Printf("dump failed after %d commands: %v", written, err)
		return 1
	}
	log.Printf("✅ dump complete: %d commands written", written)
	return 0
}

// runReplay decodes a snapshot file and replays the projected commands
// against a live target named in the config file.
func runReplay(args []string) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	var configPath, rdbPath string
	fs.StringVar(&configPath, "config", "", "Configuration file path (YAML)")
	fs.StringVar(&configPath, "c", "", "Configuration file path (YAML)")
	fs.StringVar(&rdbPath, "rdb", "", "Snapshot file path (overrides config source.path)")
	if err := fs.Parse(args); err != nil {
		return errorToExitCode(err)
	}
	if configPath == "" {
		log.Println("The --config flag is required")
		fs.Usage()
		return 2
	}

	snapshotPath, cfg, err := resolveSnapshotPath(configPath, rdbPath)
	if err != nil {
		log.Printf("%v", err)
		return 2
	}
	if !cfg.HasTarget() {
		log.Println("target.addr is required for replay")
		return 2
	}

	if err := initLogger(cfg, "replay"); err != nil {
		log.Printf("Failed to initialize logging: %v", err)
		return 1
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := redisx.Dial(ctx, redisx.Config{
		Addr:     cfg.Target.Addr,
		Password: cfg.Target.Password,
		TLS:      cfg.Target.TLS,
	})
	if err != nil {
		logger.Error("Failed to connect to target: %v", err)
		return 1
	}
	defer client.Close()

	f, err := os.Open(snapshotPath)
	if err != nil {
		logger.Error("Failed to open snapshot: %v", err)
		return 1
	}
	defer f.Close()

	writer := sink.New(client, sink.Config{
		BatchSize:     cfg.Replay.BatchSize,
		RatePerSecond: cfg.Replay.RatePerSecond,
	})

	logger.Console("🚀 snap2cmd replay starting")
	logger.Console("📦 snapshot: %s", snapshotPath)
	logger.Console("🎯 target: %s", cfg.Target.Addr)

	written, err := decodeAndProject(f, func(cmd rdb.Command) error {
		writer.Enqueue(cmd)
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	})
	writer.Stop()

	sunk, lastErr := writer.Stats()
	if err != nil {
		logger.Error("❌ replay failed after %d commands (%d sunk): %v", written, sunk, err)
		return 1
	}
	if lastErr != nil {
		logger.Error("❌ replay finished with %d/%d commands sunk; last error: %v", sunk, written, lastErr)
		return 1
	}
	logger.Console("✅ replay complete: %d commands replayed", sunk)
	return 0
}

// decodeAndProject drains r through a fresh rdb.Parser and projects
// each decoded record into command groups passed to emit, in order.
func decodeAndProject(r *os.File, emit func(rdb.Command) error) (int, error) {
	source := rdb.NewReaderSource(r)
	decomp := rdb.DefaultDecompressor
	parser := rdb.NewParser(source, decomp)
	projector := rdb.NewProjector(decomp, nil)

	total := 0
	for {
		entries, derr := parser.Drain()
		for _, entry := range entries {
			if entry.Kind != rdb.EntryRecord {
				continue
			}
			cmds, perr := projector.Project(entry.Record)
			if perr != nil {
				return total, perr
			}
			for _, cmd := range cmds {
				if err := emit(cmd); err != nil {
					return total, err
				}
				total++
			}
		}
		if derr != nil {
			return total, derr
		}
		if parser.Done() {
			return total, nil
		}
	}
}

// renderCommand formats a command argv as one newline-terminated text
// line, space-joining arguments and single-quoting any that contain
// whitespace or quotes, redis-cli style.
func renderCommand(cmd rdb.Command) string {
	var b strings.Builder
	for i, arg := range cmd {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(quoteArg(arg))
	}
	b.WriteByte('\n')
	return b.String()
}

func quoteArg(arg []byte) string {
	s := string(arg)
	if s != "" && !strings.ContainsAny(s, " \t\n'\"") {
		return s
	}
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString(`'\''`)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// resolveSnapshotPath loads the config (if given) and returns the
// snapshot path to decode, preferring an explicit --rdb override. When no
// config file is given, the returned *config.Config is an empty Config.
func resolveSnapshotPath(configPath, rdbOverride string) (string, *config.Config, error) {
	if configPath == "" {
		if rdbOverride == "" {
			return "", nil, fmt.Errorf("either --config or --rdb is required")
		}
		return rdbOverride, &config.Config{}, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", nil, fmt.Errorf("load config: %w", err)
	}
	if rdbOverride != "" {
		return rdbOverride, cfg, nil
	}
	return cfg.ResolvedSourcePath(), cfg, nil
}

func errorToExitCode(err error) int {
	if err == flag.ErrHelp {
		return 0
	}
	log.Printf("Failed to parse arguments: %v", err)
	return 1
}

func printUsage() {
	fmt.Printf(`snap2cmd - RDB-style snapshot decoder and command projector

Usage:
  snap2cmd <command> [options]

Available commands:
  dump     Decode a snapshot file and print projected commands as text
  replay   Decode a snapshot file and replay commands against a live target
  help     Show this help
  version  Show version info

Examples:
  snap2cmd dump --rdb dump.rdb
  snap2cmd dump --config snap2cmd.yaml --out commands.txt
  snap2cmd replay --config snap2cmd.yaml
`)
}

// initLogger configures project logging for mode (dump/replay).
func initLogger(cfg *config.Config, mode string) error {
	logDir := cfg.LogDir
	if logDir == "" {
		logDir = "logs"
	}
	logDir = cfg.ResolvePath(logDir)
	if err := logger.Init(logDir, logger.INFO, fmt.Sprintf("snap2cmd-%s", mode)); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	log.SetOutput(logger.Writer())
	return nil
}
