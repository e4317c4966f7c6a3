package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ThiagoRGoveia/csv-files/internal/config"
	"github.com/ThiagoRGoveia/csv-files/internal/externalapi"
	"github.com/ThiagoRGoveia/csv-files/internal/ingestion"
	"github.com/ThiagoRGoveia/csv-files/internal/logging"
	"github.com/ThiagoRGoveia/csv-files/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// processor is satisfied by *ingestion.FilesService.
type processor interface {
	Process(ctx context.Context, fileName string) ([]models.FileResult, error)
}

type options struct {
	fileName string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "process",
		Short:         "Fetch, validate and print the CSV files exposed by the external API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(opts.output); err != nil {
				return err
			}
			service, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return run(cmd.Context(), service, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.fileName, "file", "f", "", "Only process files with exactly this name")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")

	return cmd
}

func setup() (*ingestion.FilesService, *zap.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, nil, err
	}

	client := externalapi.NewClient(externalapi.Config{
		BaseURL: cfg.ExternalAPIBaseURL,
		APIKey:  cfg.ExternalAPIKey,
		Timeout: cfg.RequestTimeout,
	}, &http.Client{}, logger.Named("externalapi"))

	return ingestion.NewFilesService(client, ingestion.NewPool(cfg.NumFetchWorkers, logger.Named("pool")), logger.Named("ingestion")), logger, nil
}

func run(ctx context.Context, service processor, opts *options, w io.Writer) error {
	results, err := service.Process(ctx, opts.fileName)
	if err != nil {
		return err
	}
	return render(w, opts.output, results)
}

func validateOutput(output string) error {
	switch output {
	case "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported output format %q: expected json or yaml", output)
}

func render(w io.Writer, output string, results []models.FileResult) error {
	if output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
