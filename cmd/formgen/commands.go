package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"geoform/internal/atlas"
	"geoform/internal/config"
	"geoform/internal/form"
	"geoform/internal/logger"
	"geoform/internal/repository"
	"geoform/internal/service"
	"geoform/internal/typeform"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configDir string
	envFile   string
	cfg       config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "formgen",
		Short:         "Regenerate the location questions of the strike registration form",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("cannot load %s: %w", opts.envFile, err)
			}
			cfg, err := config.LoadConfig(opts.configDir)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logger.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "configs", "Directory holding app.env")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "Dotenv file with secrets such as TYPEFORM_TOKEN")

	cmd.AddCommand(newGenerateCmd(opts), newValidateCmd(), newNormalizeCmd(opts))
	return cmd
}

type generateOptions struct {
	formID   string
	in       string
	out      string
	upload   bool
	snapshot string
	strict   bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch the form, rebuild the location questions and write or upload the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), root.cfg, opts)
		},
	}

	cmd.Flags().StringVar(&opts.formID, "form-id", "", "Form to regenerate (default FORM_ID)")
	cmd.Flags().StringVar(&opts.in, "in", "", "Read the base form from a file instead of fetching it")
	cmd.Flags().StringVar(&opts.out, "out", "form.json", "Write the regenerated form to this file")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "Replace the form on Typeform with the result")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "Map snapshot to read reports from (default GEO_SNAPSHOT)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Refuse to write or upload a form with problems")

	return cmd
}

func runGenerate(ctx context.Context, cfg config.Config, opts generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.formID == "" {
		opts.formID = cfg.FormID
	}
	if opts.snapshot != "" {
		cfg.GeoSnapshot = opts.snapshot
	}

	// The token is checked before any work is done.
	var client service.FormClient
	if opts.in == "" || opts.upload {
		if opts.formID == "" {
			return fmt.Errorf("no form id: set FORM_ID or --form-id")
		}
		c, err := typeform.NewClient(cfg.TypeformURL, cfg.TypeformToken, nil)
		if err != nil {
			return err
		}
		client = c
	}

	tables := atlas.DefaultTables()
	if cfg.GeoTables != "" {
		t, err := atlas.LoadTables(cfg.GeoTables)
		if err != nil {
			return err
		}
		tables = t
	}

	source, closeSource, err := reportSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	svc := service.NewFormService(client, service.NewTaxonomyService(source, tables), service.FormOptions{
		EntryAnchor:    cfg.EntryAnchor,
		ContinueAnchor: cfg.ContinueAnchor,
		Strict:         opts.strict || cfg.StrictValidation,
	})

	var res *service.Result
	if opts.in != "" {
		base, err := form.ReadFile(opts.in)
		if err != nil {
			return err
		}
		res, err = svc.GenerateFrom(ctx, base)
		if err != nil {
			return err
		}
	} else {
		res, err = svc.Generate(ctx, opts.formID)
		if err != nil {
			return err
		}
	}

	if opts.out != "" {
		if err := svc.Save(opts.out, res); err != nil {
			return err
		}
	}
	if opts.upload {
		if _, err := svc.Publish(ctx, opts.formID, res); err != nil {
			return err
		}
	}
	return nil
}

func reportSource(ctx context.Context, cfg config.Config) (service.ReportSource, func(), error) {
	if cfg.DBSource == "" {
		log.Debug().Str("path", cfg.GeoSnapshot).Msg("reading reports from snapshot")
		return repository.NewSnapshot(cfg.GeoSnapshot), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot connect to db: %w", err)
	}
	return repository.NewRepository(pool), pool.Close, nil
}

func newValidateCmd() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the jump logic and section order of a form file",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := form.ReadFile(in)
			if err != nil {
				return err
			}

			svc := service.NewFormService(nil, nil, service.FormOptions{})
			problems := svc.Diagnose(d)

			ordered, err := d.Clone()
			if err != nil {
				return err
			}
			untagged := form.OrderSections(ordered)

			out := cmd.OutOrStdout()
			for _, p := range append(problems, untagged...) {
				fmt.Fprintln(out, p)
			}
			fmt.Fprintf(out, "%d fields, %d rules, %d problems, %d untagged\n",
				len(d.Fields), len(d.Logic), len(problems), len(untagged))

			if len(problems) > 0 {
				return fmt.Errorf("%w: %d problems", service.ErrValidationFailed, len(problems))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Form file to check (required)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

func newNormalizeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize [name...]",
		Short: "Show how location names are normalized and which country they resolve to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := atlas.DefaultTables()
			if root.cfg.GeoTables != "" {
				t, err := atlas.LoadTables(root.cfg.GeoTables)
				if err != nil {
					return err
				}
				tables = t
			}
			svc := service.NewTaxonomyService(nil, tables)

			out := cmd.OutOrStdout()
			for _, arg := range args {
				normalized, err := svc.Normalize(arg)
				if err != nil {
					return err
				}
				country, ok := svc.Country(arg)
				if !ok {
					country = "-"
				}
				fmt.Fprintf(out, "%q\t%q\t%s\n", arg, normalized, country)
			}
			return nil
		},
	}
}
