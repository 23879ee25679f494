package main

import (
	"context"
	"fmt"
	"io"

	"tmfstock/internal/attachments"
	"tmfstock/internal/blob"
	"tmfstock/internal/config"
	"tmfstock/internal/core"
	"tmfstock/internal/observability"
	"tmfstock/internal/seed"
)

// app bundles the collaborators shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *observability.StdLogger
	metrics *observability.PrometheusRecorder
	tracer  *observability.JSONTracer
	svc     *core.Service
	codec   attachments.Mux
}

// buildApp wires the service. extraOpts are applied last and may override the
// defaults.
func buildApp(ctx context.Context, cfg *config.Config, opts *rootOptions, recorders []core.MetricsRecorder, extraOpts ...core.ServiceOption) (*app, error) {
	a := &app{
		cfg:     cfg,
		logger:  observability.NewWriterLogger(opts.errOut, cfg.Debug),
		metrics: observability.NewPrometheusRecorder(),
	}
	serviceOpts := []core.ServiceOption{
		core.WithLogger(a.logger),
		core.WithMetricsRecorder(append(observability.FanoutRecorder{a.metrics}, recorders...)),
	}
	if opts.trace {
		a.tracer = observability.NewJSONTracer(opts.errOut, 0)
		serviceOpts = append(serviceOpts, core.WithTracer(a.tracer))
	}
	if cfg.Seed {
		serviceOpts = append(serviceOpts, core.WithInitialState(seed.Snapshot()))
	}
	a.svc = core.NewInMemoryService(nil, append(serviceOpts, extraOpts...)...)

	codec, err := openAttachments(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.codec = codec
	return a, nil
}

// openAttachments builds the receipt codec for the configured mode. The blob
// store is opened in both modes so previously stored blob refs stay readable.
func openAttachments(ctx context.Context, cfg *config.Config) (attachments.Mux, error) {
	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return attachments.Mux{}, fmt.Errorf("open attachment store: %w", err)
	}
	blobCodec := attachments.NewBlobCodec(store)
	blobCodec.MaxSize = cfg.Attachments.MaxSize
	dataURL := attachments.DataURLCodec{MaxSize: cfg.Attachments.MaxSize}

	mux := attachments.Mux{Primary: dataURL, DataURL: dataURL, Blob: blobCodec}
	if cfg.Attachments.Mode == config.AttachmentBlob {
		mux.Primary = blobCodec
	}
	return mux, nil
}

func loadApp(ctx context.Context, opts *rootOptions, recorders []core.MetricsRecorder, extraOpts ...core.ServiceOption) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildApp(ctx, cfg, opts, recorders, extraOpts...)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
