package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-tagfeed/cmd/sitegen/internal/bootstrap"
	buildcmd "github.com/goliatone/go-tagfeed/internal/commands/build"
	"github.com/goliatone/go-tagfeed/internal/runtimeconfig"
)

type moduleOptions = bootstrap.Options

type handlerSet struct {
	build command.Commander[buildcmd.BuildSiteCommand]
	clean command.Commander[buildcmd.CleanSiteCommand]
}

type moduleResources struct {
	handlers handlerSet
}

var moduleBuilder = buildModule

func buildModule(opts moduleOptions) (*moduleResources, error) {
	module, err := bootstrap.BuildModule(opts)
	if err != nil {
		return nil, err
	}
	return &moduleResources{
		handlers: handlerSet{
			build: module.Build,
			clean: module.Clean,
		},
	}, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("sitegen: %v", err)
	}
}

func run(args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.Execute()
}

type globalFlags struct {
	source      string
	destination string
	config      string
	logProvider string
	logLevel    string
	logFormat   string
}

func (g globalFlags) options() moduleOptions {
	return moduleOptions{
		Source:      g.source,
		Destination: g.destination,
		ConfigFile:  g.config,
		LogProvider: g.logProvider,
		LogLevel:    g.logLevel,
		LogFormat:   g.logFormat,
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "sitegen",
		Short: "Build a blog and its per-tag Atom feeds",
		Long: `sitegen reads a blog source tree (_config.yml, _layouts, _posts and
top-level pages) and writes the rendered site to the destination directory.

When the source has an atom layout, every tag gets a feed at
tags/<tag>/atom.xml.

Example usage:
  sitegen build                  # Build the current directory into _site
  sitegen build --dry-run        # Render everything without writing
  sitegen build --clean          # Empty the destination first
  sitegen clean                  # Remove the generated site`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("missing subcommand (build, clean)")
		},
	}

	persistent := root.PersistentFlags()
	persistent.StringVarP(&flags.source, "source", "s", ".", "blog source directory")
	persistent.StringVarP(&flags.destination, "destination", "d", "", "output directory (default from _config.yml)")
	persistent.StringVar(&flags.config, "config", runtimeconfig.DefaultConfigFile, "config file relative to the source")
	persistent.StringVar(&flags.logProvider, "logger", "", "logging provider (console, gologger)")
	persistent.StringVar(&flags.logLevel, "log-level", "", "minimum log level")
	persistent.StringVar(&flags.logFormat, "log-format", "", "go-logger format (json, console, pretty)")

	root.AddCommand(newBuildCommand(flags), newCleanCommand(flags))
	return root
}

func newBuildCommand(flags *globalFlags) *cobra.Command {
	var dryRun, clean, drafts bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the site into the destination directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			if cmd.Flags().Changed("drafts") {
				opts.Drafts = &drafts
			}
			resources, err := moduleBuilder(opts)
			if err != nil {
				return fmt.Errorf("bootstrap module: %w", err)
			}
			if resources == nil || resources.handlers.build == nil {
				return errors.New("build handler not configured")
			}

			msg := buildcmd.BuildSiteCommand{
				DryRun:         dryRun,
				Clean:          clean,
				ResultCallback: logBuildResult,
			}
			return dispatch(cmd.Context(), resources.handlers.build, msg)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render without writing files")
	cmd.Flags().BoolVar(&clean, "clean", false, "remove the destination contents before building")
	cmd.Flags().BoolVar(&drafts, "drafts", false, "include posts marked as drafts")
	return cmd
}

func newCleanCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove every generated file from the destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := moduleBuilder(flags.options())
			if err != nil {
				return fmt.Errorf("bootstrap module: %w", err)
			}
			if resources == nil || resources.handlers.clean == nil {
				return errors.New("clean handler not configured")
			}
			if err := dispatch(cmd.Context(), resources.handlers.clean, buildcmd.CleanSiteCommand{}); err != nil {
				return err
			}
			log.Printf("module=sitegen operation=clean status=completed")
			return nil
		},
	}
}

// dispatch routes msg through the go-command dispatcher with handler as the
// only subscriber for the duration of the call.
func dispatch[T command.Message](ctx context.Context, handler command.Commander[T], msg T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sub := dispatcher.SubscribeCommand(handler)
	defer sub.Unsubscribe()
	return dispatcher.Dispatch(ctx, msg)
}

func logBuildResult(envelope buildcmd.ResultEnvelope) {
	operation, _ := envelope.Metadata["operation"].(string)
	if operation == "" {
		operation = "build"
	}
	result := envelope.Result
	if result == nil {
		log.Printf("module=sitegen operation=%s", operation)
		return
	}
	log.Printf("module=sitegen operation=%s summary build_id=%s posts=%d pages=%d feeds=%d assets=%d dry_run=%t duration=%s",
		operation, result.BuildID, result.Posts, result.Pages, result.Feeds, result.Assets, result.DryRun, result.Duration)
}
