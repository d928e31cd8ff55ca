package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"filmtag/internal"
	"filmtag/internal/importer"
	"filmtag/internal/mcpserver"
	"filmtag/internal/pipeline"
	"filmtag/internal/storage"
	"filmtag/internal/table"
	pkgconfig "filmtag/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		if cmd.IsSet("config") {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		// No config file; run on defaults plus flag overrides.
	} else if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := cmd.String("library"); v != "" {
		cfg.Library.Path = v
	}
	if v := cmd.String("recipes"); v != "" {
		cfg.Recipes.Path = v
	}
	if v := cmd.String("output"); v != "" {
		cfg.Output.Dir = v
	}
	return cfg, nil
}

func newPipeline(cmd *cli.Command) (*pipeline.Pipeline, *internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(cfg)
	return internal.NewPipeline(cfg, logger), cfg, nil
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	p, _, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	path, err := p.ExportToFile(ctx)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func matchAction(ctx context.Context, cmd *cli.Command) error {
	p, cfg, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	metaPath := cmd.Args().Get(0)
	if metaPath == "" {
		metaPath = filepath.Join(cfg.Output.Dir, pipeline.MetadataFileName)
	}
	recipesPath := cmd.Args().Get(1)
	if recipesPath == "" {
		recipesPath = cfg.Recipes.Path
	}

	report, err := p.MatchFiles(ctx, metaPath, recipesPath)
	if err != nil {
		return err
	}
	return printReport(report)
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	p, _, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	report, err := p.Run(ctx, cmd.Bool("tag"))
	if err != nil {
		return err
	}
	return printReport(report)
}

func tagAction(ctx context.Context, cmd *cli.Command) error {
	p, cfg, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	path := cmd.Args().Get(0)
	if path == "" {
		path = filepath.Join(cfg.Output.Dir, pipeline.MatchedFileName)
	}
	tagged, err := p.TagMatchedFile(ctx, path)
	if err != nil {
		return err
	}
	fmt.Printf("tagged %d photos\n", tagged)
	return nil
}

func importAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	internal.NewLogger(cfg)

	source := cmd.Args().Get(0)
	if source == "" {
		return fmt.Errorf("usage: import <url-or-html-file>")
	}

	recipes, err := importRecipes(ctx, source)
	if err != nil {
		return err
	}

	out := cmd.String("out")
	if out == "" {
		out = cfg.Recipes.Path
	}
	data, err := recipes.Bytes()
	if err != nil {
		return err
	}
	if err := storage.WriteAtomic(out, data); err != nil {
		return err
	}
	fmt.Printf("imported %d recipes to %s\n", recipes.Len(), out)
	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	p, _, err := newPipeline(cmd)
	if err != nil {
		return err
	}
	return mcpserver.New(p).ServeStdio()
}

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "library",
			Aliases: []string{"l"},
			Usage:   "Photo library directory (overrides config)",
		},
		&cli.StringFlag{
			Name:    "recipes",
			Aliases: []string{"r"},
			Usage:   "Recipes CSV file (overrides config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (overrides config)",
		},
	}

	cmd := &cli.Command{
		Name:  "filmtag",
		Usage: "Identify which film simulation recipe produced each photo in a library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("FILMTAG_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Extract library metadata to metadata.csv",
				Flags:  commonFlags,
				Action: exportAction,
			},
			{
				Name:      "match",
				Usage:     "Match a metadata CSV against a recipes CSV",
				ArgsUsage: "[metadata.csv] [recipes.csv]",
				Flags:     commonFlags,
				Action:    matchAction,
			},
			{
				Name:  "run",
				Usage: "Export, match, and write outputs in one step",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "tag",
						Usage: "Also write matched recipe names into photo keywords",
					},
				}, commonFlags...),
				Action: runAction,
			},
			{
				Name:      "tag",
				Usage:     "Write recipe keywords from an existing matched_recipes.csv",
				ArgsUsage: "[matched_recipes.csv]",
				Flags:     commonFlags,
				Action:    tagAction,
			},
			{
				Name:      "import",
				Usage:     "Import recipes from an HTML table (URL or local file)",
				ArgsUsage: "<url-or-html-file>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Destination CSV path (defaults to the configured recipes file)",
					},
				}, commonFlags...),
				Action: importAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the watch server with the HTTP API and SSE events",
				Flags:  commonFlags,
				Action: serveAction,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdin/stdout",
				Flags:  commonFlags,
				Action: mcpAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func importRecipes(ctx context.Context, source string) (*table.Table, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return importer.FetchURL(ctx, source)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	defer f.Close()
	return importer.Parse(f)
}
