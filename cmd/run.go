package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/nibzard/prospector/internal/agents"
	"github.com/nibzard/prospector/internal/config"
	"github.com/nibzard/prospector/internal/leads"
	"github.com/nibzard/prospector/internal/llm"
	"github.com/nibzard/prospector/internal/logging"
	"github.com/nibzard/prospector/internal/metrics"
	"github.com/nibzard/prospector/internal/profile"
	"github.com/nibzard/prospector/internal/report"
	"github.com/nibzard/prospector/internal/sales"
	"github.com/nibzard/prospector/internal/scrape"
	"github.com/nibzard/prospector/internal/search"
	"github.com/nibzard/prospector/internal/secret"
	"github.com/nibzard/prospector/internal/ui"
)

var newResolver = secret.NewResolver

// newLLMClient is replaced in tests.
var newLLMClient = llm.New

// runCommand researches every lead and writes the report.
func runCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("prospector run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		cfg.LeadsFile = remaining[0]
	}
	if !filepath.IsAbs(cfg.LeadsFile) {
		cfg.LeadsFile = filepath.Join(cfg.ProjectRoot, cfg.LeadsFile)
	}
	if !filepath.IsAbs(cfg.ReportFile) {
		cfg.ReportFile = filepath.Join(cfg.ProjectRoot, cfg.ReportFile)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	leadList, err := leads.Load(cfg.LeadsFile)
	if err != nil {
		return err
	}

	logger := agents.NewConsoleLogger(stderr, agents.ConsoleLogOptionsFromConfig(
		cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller, "prospector"))

	pipeline, cleanup, err := newPipeline(cfg, newResolver(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	runLog, err := logging.NewRunLogger(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("initializing run log: %w", err)
	}
	defer runLog.Close()
	logger.Debug("Run log", "path", runLog.LogPath)

	batch, err := processLeads(ctx, cfg, pipeline, runLog, logger, leadList)
	if err != nil {
		return err
	}

	for i, result := range batch.Results {
		if _, err := runLog.WriteResult(leadList[i].Name, result); err != nil {
			logger.Warn("Failed to save result", "lead", leadList[i].Name, "error", err)
		}
	}
	if cfg.MetricsFile != "" {
		if err := pipeline.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}
	logger.Info("Run complete", "leads", len(batch.Results), "report", batch.ReportPath, "log", runLog.LogPath)
	return nil
}

// processLeads runs the batch with the console output selected by cfg.UI.
func processLeads(ctx context.Context, cfg *config.Config, pipeline *sales.Pipeline, runLog *logging.RunLogger, logger *log.Logger, leadList []leads.Lead) (*sales.BatchResult, error) {
	uiMode := cfg.UI
	if uiMode == config.UITUI && !ui.IsTTY(stdout) {
		logger.Warn("Not a terminal, falling back to log output")
		uiMode = config.UILog
	}

	switch uiMode {
	case config.UITUI:
		var out bytes.Buffer
		pipeline.Out = &out
		pipeline.Logger = nil
		names := make([]string, len(leadList))
		for i, l := range leadList {
			names[i] = l.Name
		}

		var batch *sales.BatchResult
		err := ui.RunProgress(ctx, names, func(ctx context.Context, w agents.LogWriter) error {
			pipeline.LogWriter = agents.NewMultiLogWriter(runLog.LogWriter(), w)
			var err error
			batch, err = pipeline.ProcessAll(ctx, leadList)
			return err
		}, ui.WithAltScreen(true))
		_, _ = stdout.Write(out.Bytes())
		return batch, err
	case config.UIPlain:
		pipeline.LogWriter = agents.NewMultiLogWriter(runLog.LogWriter(), agents.NewMultiplexedLogWriter(stderr))
	default:
		pipeline.LogWriter = agents.NewMultiLogWriter(runLog.LogWriter(), agents.NewConsoleLogWriterWithLogger(logger))
	}
	return pipeline.ProcessAll(ctx, leadList)
}

// newPipeline builds the clients and the team from cfg. The returned
// cleanup releases the clients.
func newPipeline(cfg *config.Config, resolver *secret.Resolver, logger *log.Logger) (*sales.Pipeline, func(), error) {
	keyName := llm.KeyName(cfg.LLM.Provider)
	apiKey, err := resolver.Get(keyName)
	if err != nil {
		if secret.IsNotFound(err) {
			return nil, nil, fmt.Errorf("%w (set it in the environment, a .env file or with 'prospector keys set %s')", err, keyName)
		}
		return nil, nil, err
	}
	client, err := newLLMClient(cfg.LLM.Provider, apiKey, llm.Options{
		BaseURL:    cfg.LLM.BaseURL,
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating llm client: %w", err)
	}

	mode, err := sales.ParseResearchMode(cfg.ResearchMode)
	if err != nil {
		return nil, nil, err
	}

	searcher, err := search.New(resolver.Optional(secret.TavilyAPIKey), search.Options{
		BaseURL:  cfg.Search.BaseURL,
		Depth:    cfg.Search.Depth,
		CacheTTL: cfg.CacheTTL(),
	})
	if err != nil {
		return nil, nil, err
	}
	if mode == sales.ResearchSearch && resolver.Optional(secret.TavilyAPIKey) == "" {
		logger.Warn("No web search key configured, research will return errors", "key", secret.TavilyAPIKey)
	}
	scraper := scrape.New(resolver.Optional(secret.ScraperAPIKey), scrape.Options{
		BaseURL:      cfg.Scraper.BaseURL,
		OutputFormat: cfg.Scraper.OutputFormat,
	})

	tools := &sales.Toolbox{
		Search:      searcher,
		Scraper:     scraper,
		Extractor:   &profile.Extractor{Client: client, Model: cfg.ToolModel()},
		Writer:      client,
		WriterModel: cfg.ToolModel(),
		Sender: sales.Sender{
			Name:           cfg.Sender.Name,
			Company:        cfg.Sender.Company,
			CompanyContext: cfg.Sender.CompanyContext,
		},
		MaxResults: cfg.Search.MaxResults,
		Logger:     logger,
	}

	pipeline := &sales.Pipeline{
		Client:         client,
		Team:           sales.NewTeam(tools, sales.TeamOptions{Mode: mode, Model: cfg.LLM.Model}),
		MaxTurns:       cfg.MaxTurns,
		Temperature:    cfg.LLM.Temperature,
		MaxConcurrency: cfg.MaxConcurrency,
		Metrics:        metrics.New(),
		Report:         &report.Generator{Fs: afero.NewOsFs(), Path: cfg.ReportFile},
		Out:            stdout,
	}
	if cfg.ShowProgress {
		pipeline.Logger = logger
	}
	return pipeline, searcher.Close, nil
}
