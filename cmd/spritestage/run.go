package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/spritestage/config"
	"github.com/lixenwraith/spritestage/core"
	"github.com/lixenwraith/spritestage/logging"
	"github.com/lixenwraith/spritestage/project"
)

var runCmd = &cobra.Command{
	Use:   "run <project.yaml>",
	Short: "Run a project on the terminal canvas",
	Long: `Loads the project's actors and program and runs them on the terminal.

Keys: space pause/resume, r reset, d/p draw or physics backend,
l reload program, s save actors, q quit. Drag actors with the left button.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")

		var opts runOptions
		opts.httpAddr, _ = cmd.Flags().GetString("http")
		opts.backend, _ = cmd.Flags().GetString("backend")
		opts.watch, _ = cmd.Flags().GetBool("watch")
		opts.noAudio, _ = cmd.Flags().GetBool("no-audio")
		opts.restore, _ = cmd.Flags().GetBool("restore")
		opts.autostart, _ = cmd.Flags().GetBool("start")

		return runProject(args[0], configPath, debug, opts)
	},
}

func init() {
	runCmd.Flags().String("http", "", "Serve the control API on this address (e.g. :8080)")
	runCmd.Flags().String("backend", "", "Render backend: draw or physics")
	runCmd.Flags().BoolP("watch", "w", false, "Hot-swap the program when its file changes")
	runCmd.Flags().Bool("debug", false, "Write logs to the log directory")
	runCmd.Flags().Bool("no-audio", false, "Disable tone output")
	runCmd.Flags().Bool("restore", false, "Restore actors from the configured snapshot store")
	runCmd.Flags().Bool("start", false, "Start the program immediately")
	rootCmd.AddCommand(runCmd)
}

func runProject(path, configPath string, debug bool, opts runOptions) error {
	// Restore the terminal before the trace if anything panics on this goroutine
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	cfg, err := config.NewLoader().Load(configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger, logFile, err := logging.Setup(debug || cfg.Log.Debug, cfg.Log.Dir, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	proj, err := project.Load(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, proj, opts, nil, logger)
	if err != nil {
		return err
	}
	logger.Info("running project", "path", path, "actors", a.engine.Store().Len(), "engine_id", a.engine.ID())
	return a.run(ctx)
}
