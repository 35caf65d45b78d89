package cli

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DeBrosOfficial/ufwtail/pkg/api"
	"github.com/DeBrosOfficial/ufwtail/pkg/config"
	"github.com/DeBrosOfficial/ufwtail/pkg/hoststat"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
	"github.com/DeBrosOfficial/ufwtail/pkg/services"
	"github.com/DeBrosOfficial/ufwtail/pkg/tailer"
	"github.com/DeBrosOfficial/ufwtail/pkg/tui"
	"github.com/DeBrosOfficial/ufwtail/pkg/ufwlog"
)

// App is the assembled pipeline for one run.
type App struct {
	cfg      *config.Config
	logger   *logging.ColoredLogger
	path     string
	ingester *pipeline.Ingester
	consumer *pipeline.Consumer
	server   *api.Server
	host     *hoststat.Sampler
}

// NewApp resolves the log path, opens it and wires the pipeline. The
// returned error is a SourceUnavailableError when no log can be read.
func NewApp(cfg *config.Config, logger *logging.ColoredLogger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	path, err := tailer.ResolvePath(cfg.Source.Path, cfg.Source.FallbackPaths)
	if err != nil {
		return nil, err
	}
	filters, err := cfg.UI.Filters.BuildSet()
	if err != nil {
		return nil, err
	}

	source, err := tailer.Open(path, tailer.Options{
		StartAtEnd:   cfg.Source.StartAtEnd,
		MaxLineBytes: cfg.Source.MaxLineBytes,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	queue := pipeline.NewQueue(cfg.Buffer.Capacity)
	ingester := pipeline.NewIngester(source, ufwlog.NewParser(logger), queue, cfg.Source.PollInterval, logger)
	consumer := pipeline.NewConsumer(queue, ingester, pipeline.ConsumerOptions{
		Capacity: cfg.Buffer.Capacity,
		Catalog:  services.Default(),
		Filters:  filters,
		Logger:   logger,
	})

	app := &App{
		cfg:      cfg,
		logger:   logger,
		path:     path,
		ingester: ingester,
		consumer: consumer,
	}
	if cfg.API.Enabled {
		opts := api.Options{
			ListenAddr:       cfg.API.ListenAddr,
			SubscriberBuffer: cfg.API.SubscriberBuffer,
			MaxConnections:   cfg.API.MaxConnections,
			Logger:           logger,
		}
		if cfg.API.HostInterval > 0 {
			app.host = hoststat.NewSampler(cfg.API.HostInterval, logger)
			opts.Host = app.host
		}
		app.server = api.New(consumer, opts)
		consumer.OnPublish(app.server.Publish)
	}

	logger.ComponentInfo(logging.ComponentGeneral, "tailing firewall log",
		zap.String("path", path),
		zap.Int("capacity", cfg.Buffer.Capacity),
		zap.Bool("plain", cfg.UI.Plain),
		zap.Bool("api", cfg.API.Enabled))
	return app, nil
}

// Path returns the resolved log path.
func (a *App) Path() string { return a.path }

// Consumer returns the foreground consumer.
func (a *App) Consumer() *pipeline.Consumer { return a.consumer }

// Run starts the ingester and the optional mirror, then runs the viewer or
// plain printer on the calling goroutine until it finishes or ctx is done.
func (a *App) Run(ctx context.Context, stdout io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.ingester.Run(gctx) })
	if a.server != nil {
		g.Go(func() error { return a.server.Run(gctx) })
	}
	if a.host != nil {
		g.Go(func() error { return a.host.Run(gctx) })
	}

	var err error
	if a.cfg.UI.Plain {
		err = RunPlain(gctx, a.consumer, a.cfg.Source.PollInterval, stdout, a.cfg.UI.ShowDescription)
	} else {
		err = tui.Run(gctx, tui.New(a.consumer, tui.Options{
			Source:          a.path,
			PollInterval:    a.cfg.Source.PollInterval,
			ShowDescription: a.cfg.UI.ShowDescription,
			Logger:          a.logger,
		}))
	}

	cancel()
	if gerr := g.Wait(); err == nil {
		err = gerr
	}
	return err
}

// newLogger picks the diagnostics sink. The viewer owns the terminal, so
// without an output file it logs nowhere; plain mode logs to stderr.
func newLogger(cfg *config.Config, stderr io.Writer) (*logging.ColoredLogger, error) {
	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if cfg.Logging.OutputFile != "" {
		return logging.NewFileLogger(cfg.Logging.OutputFile, opts)
	}
	if !cfg.UI.Plain {
		return logging.NewNop(), nil
	}
	if f, ok := stderr.(*os.File); ok {
		opts.Colors = logging.IsTerminal(f)
	}
	return logging.NewWriterLogger(stderr, opts)
}
