// cmd/sectorsim/tracing.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mmp/sectorsim/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// initTracing installs a global tracer provider that writes runner spans
// as JSON to the named file. The returned function flushes and closes it.
func initTracing(ctx context.Context, filename string, lg *log.Logger) (func(), error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", "sectorsim")))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	lg.Infof("%s: writing traces", filename)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			lg.Warnf("%s: tracing shutdown: %v", filename, err)
		}
		if err := f.Close(); err != nil {
			lg.Errorf("%s: %v", filename, err)
		}
	}, nil
}
