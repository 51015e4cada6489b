package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/markdown"
	pkgconfig "github.com/starford/folio/pkg/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func render(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("render: expected exactly one file (use - for stdin)")
	}
	file := cmd.Args().First()

	var (
		source []byte
		err    error
	)
	if file == "-" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(file)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	location := cmd.String("location")
	if location == "" && file != "-" {
		location = file
	}

	opts := markdown.Options{DocsPrefix: cmd.String("prefix")}
	_, err = fmt.Fprintln(os.Stdout, opts.Render(string(source), location))
	return err
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("search: query is required")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Keep stdout for results.
	view, err := internal.Search(ctx, cmd.Args().First(), internal.WithConfig(cfg), internal.WithLogOutput(io.Discard))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Printf("%d matches in %d documents for %q\n", view.TotalMatches, len(view.Hits), view.Query)
	for _, hit := range view.Hits {
		fmt.Printf("\n%s (%s)\n", hit.FileName, hit.Path)
		for _, s := range hit.Snippets {
			fmt.Printf("  %4d: %s\n", s.LineNumber, s.Context)
		}
	}
	return nil
}

func generateManifest(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := internal.GenerateManifest(ctx, internal.WithConfig(cfg), internal.WithLogOutput(io.Discard))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	cmd := &cli.Command{
		Name:    "folio",
		Usage:   "Static documentation viewer with Markdown rendering and in-memory full-text search",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the viewer API and site files over HTTP",
				Action: serve,
			},
			{
				Name:      "render",
				Usage:     "Render one Markdown file to HTML on stdout",
				ArgsUsage: "<file|->",
				Action:    render,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "location",
						Usage: "Document path used to resolve relative links (defaults to the file path)",
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Documents-root prefix",
						Value: markdown.DefaultDocsPrefix,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Preload the site and print matches for a query",
				ArgsUsage: "<query>",
				Action:    runSearch,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the search view as JSON",
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:   "manifest",
				Usage:  "Generate a manifest for a local site on stdout",
				Action: generateManifest,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
