// cmd/rocksopts/main.go
//
// rocksopts – storage option bootstrap.
//
// Life-cycle
// ----------
//
//  1. Define launcher flags plus one flag per registered storage option.
//
//  2. Validate launcher settings (config file exists, SQL source complete).
//
//  3. Start the logger (tees to console when running in a TTY).
//
//  4. Merge dotenv, YAML, SQL overrides, env vars, and flags into one
//     Environment; resolve Vault references.
//
//  5. Apply the Environment to a fresh Settings record.  Any rejected value
//     aborts with exit status 1 after logging every violation.
//
//  6. Optionally print the effective settings as YAML and write metrics to
//     a textfile.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/rocksopts/internal/config"
	"github.com/yanizio/rocksopts/internal/database"
	"github.com/yanizio/rocksopts/internal/logger"
	"github.com/yanizio/rocksopts/internal/metrics"
	"github.com/yanizio/rocksopts/internal/option"
	"github.com/yanizio/rocksopts/internal/overrides"
	"github.com/yanizio/rocksopts/internal/storage"
	"github.com/yanizio/rocksopts/internal/vault"
)

// loadTimeout bounds the SQL and Vault round trips.
const loadTimeout = 30 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	reg := storage.Options()

	//
	// ── 1.  Flags ───────────────────────────────────────────────────────
	//
	var (
		boot        config.Bootstrap
		printConfig bool
		sample      bool
	)
	fs := pflag.NewFlagSet("rocksopts", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&boot.ConfigFile, "config", "", "YAML config file")
	fs.StringVar(&boot.EnvFile, "env-file", "", "dotenv file loaded before "+config.EnvPrefix+"* variables are read")
	fs.StringVar(&boot.LogDir, "log-dir", "", "directory for daily JSON logs (console only when empty)")
	fs.StringVar(&boot.OverridesDSN, "overrides-dsn", "", "MySQL DSN of the option override table")
	fs.StringVar(&boot.OverridesProfile, "overrides-profile", "", "override profile to load")
	fs.BoolVar(&boot.Vault, "vault", false, "resolve vault: references (reads VAULT_ADDR and VAULT_TOKEN)")
	fs.StringVar(&boot.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	fs.BoolVar(&printConfig, "print", false, "print the effective settings as YAML")
	fs.BoolVar(&sample, "sample-config", false, "print a sample config file and exit")

	if err := reg.AddFlags(fs); err != nil {
		log.Fatalf("define option flags: %v", err) // option table bug
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: rocksopts [flags]\n\n%s:\n%s", reg.Title(), fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		// ContinueOnError leaves reporting to us.
		fmt.Fprintln(stderr, err)
		fs.Usage()
		return 2
	}

	if sample {
		out, err := reg.SampleYAML()
		if err != nil {
			fmt.Fprintf(stderr, "sample config: %v\n", err)
			return 1
		}
		_, _ = stdout.Write(out)
		return 0
	}

	if err := config.ValidateBootstrap(&boot); err != nil {
		fmt.Fprintf(stderr, "invalid launcher flags: %v\n", err)
		return 2
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	logOut, err := logger.New(logger.Options{Dir: boot.LogDir, Tee: runningInTTY()})
	if err != nil {
		fmt.Fprintf(stderr, "start logger: %v\n", err)
		return 1
	}
	defer func() { _ = logOut.Sync() }()
	defer writeMetrics(logOut, boot.MetricsTextfile)

	//
	// ── 3.  Environment ─────────────────────────────────────────────────
	//
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	src := config.Sources{
		Registry:  reg,
		Bootstrap: boot,
		Flags:     reg.FlagValues(fs),
		Namespace: storage.Prefix,
	}
	if boot.OverridesDSN != "" {
		src.Overrides = func(ctx context.Context) (map[string]string, error) {
			db, err := database.Open(ctx, boot.OverridesDSN)
			if err != nil {
				return nil, err
			}
			defer db.Close()
			return overrides.Load(ctx, db, boot.OverridesProfile)
		}
	}
	if boot.Vault {
		cli, err := vault.New()
		if err != nil {
			logOut.Errorw("vault client", "err", err)
			return 1
		}
		src.Vault = cli
	}

	k, err := config.Load(ctx, src)
	if err != nil {
		logOut.Errorw("build option environment", "err", err)
		return 1
	}

	//
	// ── 4.  Apply ───────────────────────────────────────────────────────
	//
	settings, err := storage.Load(option.FromKoanf(k), logOut)
	if err != nil {
		logOut.Errorw("storage settings rejected, aborting startup", "err", err)
		return 1
	}
	logOut.Infow("storage settings ready",
		"compression", settings.Compression,
		"terark", settings.Terark.Enable,
		"num_levels", settings.NumLevels,
	)

	if printConfig {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(settings.Redacted()); err != nil {
			logOut.Errorw("print settings", "err", err)
			return 1
		}
		_ = enc.Close()
	}
	return 0
}

// writeMetrics dumps the registry when a textfile path is configured.
func writeMetrics(logOut *zap.SugaredLogger, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logOut.Warnw("write metrics textfile", "file", path, "err", err)
	}
}
