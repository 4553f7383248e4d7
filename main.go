package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func newLogger() zerolog.Logger {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: false, TimeFormat: time.RFC3339}
	consoleWriter.TimeFormat = "[" + time.RFC3339 + "]"
	consoleWriter.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		zerolog.CallerFieldName,
		zerolog.MessageFieldName,
	}

	logger := zerolog.New(consoleWriter).
		With().Timestamp().Logger()

	level := zerolog.InfoLevel
	envLevel, ok := os.LookupEnv("LOG_LEVEL")
	if ok {
		parsed, err := zerolog.ParseLevel(envLevel)
		if err != nil {
			logger.Warn().Err(err).Msg("could not parse environment variable LOG_LEVEL")
			return logger
		}
		level = parsed
	}

	return logger.Level(level)
}

func main() {
	// Credentials may come from a .env file; missing is fine.
	_ = godotenv.Load()

	args := Command{}
	cli := kong.Parse(&args,
		kong.Name("mongobak"),
		kong.Description("MongoDB backup and restore orchestration"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignals(cancel)

	logger := newLogger()
	switch cli.Command() {
	case "version":
		versionCommand()
	case "backup":
		err := backupCommand(ctx, args, logger)
		if err != nil {
			logger.Error().Err(err).Msg("backup error")
			cli.Exit(1)
		}
	case "restore":
		err := restoreCommand(ctx, args, logger)
		if err != nil {
			logger.Error().Err(err).Msg("restore error")
			cli.Exit(1)
		}
	case "purge":
		err := purgeCommand(ctx, args, logger)
		if err != nil {
			logger.Error().Err(err).Msg("purge error")
			cli.Exit(1)
		}
	case "run":
		err := runCommand(ctx, args, logger)
		if err != nil {
			logger.Error().Err(err).Msg("run error")
			cli.Exit(1)
		}
	case "history":
		err := historyCommand(ctx, args, logger)
		if err != nil {
			logger.Error().Err(err).Msg("history error")
			cli.Exit(1)
		}
	default:
		panic(cli.Command())
	}
}

func setupSignals(onSignal func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		onSignal()
	}()
}
