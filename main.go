package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/floedb/floe/gologger"
	"github.com/floedb/floe/http_server"
	"github.com/floedb/floe/operator"
	"github.com/floedb/floe/source"
	"github.com/floedb/floe/utils"
)

var logger = gologger.NewLogger()

func main() {
	instanceID := utils.GenRandomShortID()
	logger = logger.With().Str("instanceID", instanceID).Logger()
	logger.Debug().Msg("starting floe scan planner")

	var op operator.Operator
	var err error
	if utils.S3_BUCKET_NAME != "" {
		op, err = operator.NewS3(utils.S3_BUCKET_NAME)
		if err != nil {
			logger.Error().Err(err).Msg("error creating s3 operator")
			os.Exit(1)
		}
	} else {
		op, err = operator.NewLocal(utils.FS_ROOT)
		if err != nil {
			logger.Error().Err(err).Msg("error creating local operator")
			os.Exit(1)
		}
	}

	sec := source.SecurityConfig{
		AllowInsecure: utils.ALLOW_INSECURE,
	}
	if !sec.AllowInsecure {
		logger.Warn().Msg("FLOE_ALLOW_INSECURE is not set, read_parquet will refuse to plan")
	}

	httpServer := http_server.StartHTTPServer(op, sec, &source.MemoryCatalog{})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	// Convert the time to seconds
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
}
