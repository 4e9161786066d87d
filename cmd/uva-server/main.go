package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/uva-calculator/internal/calculator"
	"github.com/iwvelando/uva-calculator/internal/config"
	"github.com/iwvelando/uva-calculator/internal/logging"
	"github.com/iwvelando/uva-calculator/internal/server"
	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/iwvelando/uva-calculator/pkg/exchange"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	offline := flag.Bool("offline", false, "skip network rate sources and use the cache or fallback rate")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		serverConf.Address = *address
	}

	logger, err := logging.New(serverConf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var conf *config.Configuration
	if _, statErr := os.Stat(serverConf.CalculatorConfig); errors.Is(statErr, fs.ErrNotExist) {
		logger.Info("calculator configuration not found, using defaults",
			zap.String("op", "main"),
			zap.String("path", serverConf.CalculatorConfig),
		)
		conf = config.DefaultConfiguration()
	} else if conf, err = config.LoadConfiguration(serverConf.CalculatorConfig); err != nil {
		logger.Fatal(fmt.Sprintf("failed to load configuration at %s", serverConf.CalculatorConfig),
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calc, err := calculator.FromConfiguration(logger, conf)
	if err != nil {
		logger.Fatal("failed to initialize calculator",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	provider, closer, err := conf.NewRateProvider(logger, *offline)
	if err != nil {
		logger.Fatal("failed to initialize rate provider",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close rate cache",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), conf.ExchangeRate.Timeout*3)
	initial := provider.OfficialRate(ctx)
	cancel()

	handler := server.NewHandler(logger, server.Options{
		Calculator:  calc,
		Provider:    provider,
		Rates:       exchange.StateFromQuote(initial),
		MaxBodySize: serverConf.BodySizeBytes(),
		Version:     version,
	})

	refresher, err := exchange.NewRefresher(logger, provider, conf.ExchangeRate.RefreshSchedule, handler.UpdateOfficial)
	if err != nil {
		logger.Fatal("failed to schedule rate refresh",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if !*offline {
		refresher.Start()
	}

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: serverConf.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
			zap.Float64("officialRate", initial.Value),
			zap.String("rateSource", initial.Source),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeout)
	defer shutdownCancel()
	<-refresher.Stop().Done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
