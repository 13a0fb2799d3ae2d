// OttoBrew is a pour-over brewing assistant for the terminal.
//
// Usage:
//
//	ottobrew [-verbose] [-quiet] [-config file] [-serve addr] [-voice]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottobrew/internal/chime"
	"github.com/hammamikhairi/ottobrew/internal/cocktail"
	"github.com/hammamikhairi/ottobrew/internal/config"
	"github.com/hammamikhairi/ottobrew/internal/conversation"
	"github.com/hammamikhairi/ottobrew/internal/display"
	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/engine"
	"github.com/hammamikhairi/ottobrew/internal/httpapi"
	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/storage"
	"github.com/hammamikhairi/ottobrew/internal/timer"
	"github.com/hammamikhairi/ottobrew/internal/voice"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	configPath := flag.String("config", os.Getenv(config.EnvConfigPath), "YAML or TOML config file")
	serve := flag.String("serve", "", "also serve the read-only JSON API on this address (e.g. :8080)")
	voiceOn := flag.Bool("voice", false, "enable voice input via local Whisper STT")
	noChime := flag.Bool("no-chime", false, "do not ring when a wait timer fires")
	themeName := flag.String("theme", "", "color scheme: dark or light")
	dbPath := flag.String("db", "", "brew history database (\"off\" disables it)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.Getenv)
	applyFlags(&cfg, *themeName, *dbPath, *serve, *logFile, *voiceOn, *noChime)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config:\n%v\n", err)
		os.Exit(1)
	}

	logLevel, _ := logger.ParseLevel(cfg.Log.Level)
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.Log.File != "" && cfg.Log.File != "stderr" {
		if dir := filepath.Dir(cfg.Log.File); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.Log.File, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// The whisper transcriber logs through the standard library.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cocktails := loadCocktails(cfg.Cocktails.File, log)
	store := storage.NewMemoryStore(log)

	engineOpts := []engine.Option{
		engine.WithWaits(cfg.Waits()),
		engine.WithAllowCustomVolume(cfg.Brew.AllowCustomVolume),
	}
	if cfg.Storage.HistoryDB != "" {
		history, err := storage.OpenHistory(cfg.Storage.HistoryDB, log.With("history"))
		if err != nil {
			log.Error("history disabled: %v", err)
		} else {
			defer history.Close()
			engineOpts = append(engineOpts, engine.WithHistory(history))
		}
	}
	eng := engine.New(cocktails, store, log, engineOpts...)

	ui := display.NewUI(store, cfg.Scheme())
	notifier := conversation.NewCLINotifier(log, ui.Printf, conversation.WithColor(display.ColorEnabled()))
	parser := conversation.NewKeywordParser(log)

	alarm := newAlarm(cfg.Audio, log.With("chime"))
	defer alarm.Stop()

	supervisor := timer.New(store, notifier, log.With("timer"),
		timer.WithTickInterval(cfg.Timer.Tick),
		timer.WithNotifyCooldown(cfg.Timer.NotifyCooldown),
		timer.WithAlarm(alarm),
		timer.WithWatcher(
			timer.WithWatchInterval(cfg.Timer.WatchInterval),
			timer.WithIdleAfter(cfg.Timer.IdleAfter),
		),
	)

	var ear *voice.Ear
	if cfg.Audio.Voice {
		if _, err := os.Stat(cfg.Audio.WhisperModel); err != nil {
			fmt.Fprintf(os.Stderr, "error: whisper model not found at %s\n", cfg.Audio.WhisperModel)
			os.Exit(1)
		}
		ear = voice.NewEar(cfg.Audio.WhisperBin, cfg.Audio.WhisperModel, log.With("ear"),
			voice.WithRecordDuration(time.Duration(cfg.Audio.RecordSeconds)*time.Second),
		)
		go ear.Run(ctx)
		log.Info("voice input enabled (bin=%s, model=%s, chunk=%ds)",
			cfg.Audio.WhisperBin, cfg.Audio.WhisperModel, cfg.Audio.RecordSeconds)
	}

	if cfg.HTTP.Address != "" {
		srv := httpapi.NewServer(cfg.HTTP, httpapi.NewHandler(eng, log.With("http")), log.With("http"))
		go serveAPI(ctx, srv, log)
	}

	supervisor.Start(ctx)
	defer supervisor.Stop()

	app := &cliApp{
		engine: eng,
		parser: parser,
		ear:    ear,
		log:    log,
		ui:     ui,
		input: domain.BrewInput{
			TotalVolumeML:  cfg.Brew.DefaultVolume,
			UseStrongRatio: cfg.Brew.Strong,
		},
	}

	fmt.Println(ui.RenderBanner())
	if ear != nil {
		ui.PrintHint("Voice mode ON. Say \"Hey Barista\" to activate, or type commands.")
	}
	ui.PrintHint("Type 'help' for commands, 'quit' to exit.")
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal and blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
}

// applyFlags lets command-line flags win over file and env settings.
func applyFlags(cfg *config.Config, themeName, dbPath, serve, logFile string, voiceOn, noChime bool) {
	if themeName != "" {
		cfg.Display.Theme = themeName
	}
	switch dbPath {
	case "":
	case "off":
		cfg.Storage.HistoryDB = ""
	default:
		cfg.Storage.HistoryDB = dbPath
	}
	if serve != "" {
		cfg.HTTP.Address = serve
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if voiceOn {
		cfg.Audio.Voice = true
	}
	if noChime {
		cfg.Audio.Chime = false
	}
}

func loadCocktails(path string, log *logger.Logger) domain.CocktailSource {
	if path == "" {
		return cocktail.NewMemorySource(log)
	}
	src, err := cocktail.LoadFile(path, log)
	if err != nil {
		log.Error("cocktail file: %v (using built-in list)", err)
		return cocktail.NewMemorySource(log)
	}
	return src
}

// alarm is a chime that can be stopped on exit.
type alarm interface {
	domain.Alarm
	Stop()
}

func newAlarm(cfg config.AudioConfig, log *logger.Logger) alarm {
	if !cfg.Chime {
		return chime.NewNoOp(log)
	}
	var opts []chime.Option
	if cfg.ChimeFile != "" {
		opts = append(opts, chime.WithWAVFile(cfg.ChimeFile))
	}
	player, err := chime.NewPlayer(log, opts...)
	if err != nil {
		log.Error("audio player init failed, chime disabled: %v", err)
		return chime.NewNoOp(log)
	}
	return player
}

func serveAPI(ctx context.Context, srv *http.Server, log *logger.Logger) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("API listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("API server: %v", err)
	}
}
