// Command railscan statically discovers the HTTP API surface of a Rails
// application and emits an OpenAPI description plus a security report.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/railscan/railscan/internal/controllers"
	"github.com/railscan/railscan/internal/detector"
	"github.com/railscan/railscan/internal/diag"
	"github.com/railscan/railscan/internal/models"
	"github.com/railscan/railscan/internal/openapi"
	"github.com/railscan/railscan/internal/repo"
	"github.com/railscan/railscan/internal/report"
	"github.com/railscan/railscan/internal/routes"
	"github.com/railscan/railscan/internal/rubyast"
)

const version = "0.1.0"

type options struct {
	output             string
	format             string
	showAll            bool
	verbose            bool
	quiet              bool
	includeConditional bool
	excludeEngines     bool
	token              string
	failOnUnprotected  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "railscan <source>",
		Short:   "Discover API endpoints in a Rails codebase",
		Long:    "railscan statically reconstructs a Rails application's routing table\nand per-endpoint authentication status, without running the application.\n\n<source> is a local path or git URL of a Rails application.",
		Args:    cobra.ExactArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				opts.token = os.Getenv("GIT_TOKEN")
			}
			return run(args[0], opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.output, "output", "o", "openapi-spec.yaml", "output file path")
	fs.StringVar(&opts.format, "format", "yaml", "output format (yaml or json)")
	fs.BoolVar(&opts.showAll, "show-all", false, "show all endpoints in the table, not only unprotected ones")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	fs.BoolVar(&opts.quiet, "quiet", false, "only show errors and final results")
	fs.BoolVar(&opts.includeConditional, "include-conditional", false, "include env-conditional routes in the document")
	fs.BoolVar(&opts.excludeEngines, "exclude-engines", false, "skip mounted engines")
	fs.StringVar(&opts.token, "token", "", "git auth token for private repos (env GIT_TOKEN)")
	fs.BoolVar(&opts.failOnUnprotected, "fail-on-unprotected", false, "exit non-zero when unprotected endpoints are found")

	return cmd
}

func run(source string, opts *options) error {
	if opts.format != "yaml" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (yaml or json)", opts.format)
	}

	var d *diag.System
	switch {
	case opts.quiet:
		d = diag.NewQuiet()
	case opts.verbose:
		d = diag.NewVerbose()
	default:
		d = diag.New(diag.LevelInfo)
	}

	resolver := repo.NewResolver(source, opts.token)
	repoRoot, err := resolver.Resolve()
	if err != nil {
		return err
	}
	defer resolver.Cleanup()
	d.Success("Repo resolved: %s", repoRoot)

	if isRails, railsVersion := detector.DetectRails(repoRoot); !isRails {
		d.Warn("Rails gem not found in Gemfile. Proceeding anyway (routes.rb exists).")
	} else {
		if railsVersion == "" {
			railsVersion = "unknown"
		}
		d.Success("Rails detected: %s", railsVersion)
	}

	provider := rubyast.NewProvider()

	d.Info("Parsing routes...")
	endpoints := routes.NewResolver(repoRoot, provider, d).Resolve()
	d.Success("Discovered %d endpoints", len(endpoints))

	if len(endpoints) == 0 {
		d.Warn("No endpoints found. Check that config/routes.rb contains route definitions.")
		return nil
	}

	d.Info("Scanning controllers...")
	controllers.NewScanner(repoRoot, provider, d).Scan(endpoints)

	var authenticated, unprotected int
	for _, ep := range endpoints {
		switch ep.HasAuth {
		case models.AuthRequired:
			authenticated++
		case models.AuthNone:
			unprotected++
		}
	}
	d.Success("Auth analysis: %d authenticated, %d unprotected", authenticated, unprotected)

	doc := openapi.Build(endpoints, openapi.Options{
		Title:              filepath.Base(repoRoot),
		IncludeConditional: opts.includeConditional,
		ExcludeEngines:     opts.excludeEngines,
	})

	var content string
	if opts.format == "json" {
		content, err = openapi.EncodeJSON(doc)
	} else {
		content, err = openapi.EncodeYAML(doc)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	d.Success("OpenAPI spec written to: %s", opts.output)

	fmt.Println()
	report.Print(os.Stdout, endpoints, opts.showAll)

	if opts.failOnUnprotected && unprotected > 0 {
		return fmt.Errorf("found %d unprotected endpoint(s)", unprotected)
	}
	return nil
}
