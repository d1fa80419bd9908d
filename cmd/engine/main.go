package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medlogiq/protocol-engine/internal/adapter"
	"github.com/medlogiq/protocol-engine/internal/config"
	"github.com/medlogiq/protocol-engine/internal/dispatch"
	"github.com/medlogiq/protocol-engine/internal/model"
	"github.com/medlogiq/protocol-engine/internal/protocol"
	"github.com/medlogiq/protocol-engine/internal/rules"
	"github.com/medlogiq/protocol-engine/internal/snapshot"
	"github.com/medlogiq/protocol-engine/pkg/logger"
	"github.com/medlogiq/protocol-engine/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.NewLogger(nil)
		fallback.Fatal(err, "failed to load configuration")
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(settings.LogLevel),
		JSON:   settings.LogJSON,
		Output: os.Stderr,
	})

	registry := protocol.NewRegistry()
	rules.RegisterAll(registry)
	log.Info("protocols registered", "count", registry.Len())

	engineMetrics := metrics.NewMetrics("protocol_engine", "dispatch")
	if settings.MetricsAddr != "" {
		go serveMetrics(settings.MetricsAddr, log)
	}

	tokens := adapter.NewTokenSource(settings.TokenURL(), settings.ClientID, settings.ClientSecret, nil)
	fhir := adapter.NewFHIRClient(settings.FHIRBaseURL(), tokens, log,
		adapter.WithTimeout(settings.AdapterTimeout),
		adapter.WithRetries(settings.RetryAttempts),
		adapter.WithMetrics(engineMetrics),
	)
	notifier := adapter.NewNotifier(log, adapter.WithNotifierMetrics(engineMetrics))

	loader := snapshot.NewFileLoader(settings.PatientDocumentDir)

	dispatcher := dispatch.New(registry, loader, fhir, notifier, settings, log,
		dispatch.WithMetrics(engineMetrics),
		dispatch.WithTaskSearcher(adapter.NewTaskFinder(fhir)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	if err := run(ctx, dispatcher, log); err != nil {
		log.Fatal(err, "engine stopped")
	}
}

// run consumes newline-delimited JSON change events from stdin and writes
// one dispatch report per event to stdout.
func run(ctx context.Context, dispatcher *dispatch.Dispatcher, log *logger.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	encoder := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event model.ChangeEvent
		if err := json.Unmarshal(line, &event); err != nil {
			log.Error(err, "skipping malformed change event")
			continue
		}

		report, err := dispatcher.Dispatch(ctx, event.PatientID, event)
		if err != nil {
			log.Error(err, "dispatch failed",
				"patient", event.PatientID, "change_type", string(event.ChangeType))
			continue
		}
		if err := encoder.Encode(report); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func serveMetrics(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error(err, "metrics server failed")
	}
}
