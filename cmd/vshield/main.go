package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"vshield-go/internal/app"
	"vshield-go/internal/config"
	"vshield-go/internal/vshield"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the config (falling back to defaults when no file exists)
// and creates an App. The caller must defer a.Close().
func newApp(logDirOverride string) (*app.App, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	if logDirOverride != "" {
		cfg.LogDir = logDirOverride
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// confirmOverwrite builds the prompt used when the target directory
// already exists. A non-interactive stdin declines unless --yes was given.
func confirmOverwrite(assumeYes bool) vshield.ConfirmFunc {
	return func(prompt string) bool {
		if assumeYes {
			return true
		}
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "stdin is not a terminal; pass --yes to proceed over an existing target directory")
			return false
		}
		fmt.Printf("%s (y/n): ", prompt)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(line), "y")
	}
}

var rootCmd = &cobra.Command{
	Use:          "vshield",
	Short:        "Batch protection tool for Verilog/SystemVerilog sources",
	SilenceUsage: true,
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify, protect, and mirror a source tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		source, _ := flags.GetString("source")
		target, _ := flags.GetString("target")
		filelist, _ := flags.GetString("filelist")
		method, _ := flags.GetString("method")
		logDir, _ := flags.GetString("log-dir")
		assumeYes, _ := flags.GetBool("yes")
		excludeFiles, _ := flags.GetStringArray("exclude-files")
		excludeDirs, _ := flags.GetStringArray("exclude-dirs")
		copyOnlyFiles, _ := flags.GetStringArray("copy-only-files")
		copyOnlyDirs, _ := flags.GetStringArray("copy-only-dirs")

		a, err := newApp(logDir)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := a.Run(ctx, app.RunOptions{
			SourceDir:     source,
			TargetDir:     target,
			FilelistName:  filelist,
			Method:        method,
			ExcludeFiles:  excludeFiles,
			ExcludeDirs:   excludeDirs,
			CopyOnlyFiles: copyOnlyFiles,
			CopyOnlyDirs:  copyOnlyDirs,
			Confirm:       confirmOverwrite(assumeYes),
		})
		if err != nil {
			if errors.Is(err, vshield.ErrDeclined) {
				return fmt.Errorf("operation cancelled by user")
			}
			return err
		}

		fmt.Printf("Total files discovered:    %d\n", result.Stats.TotalFound)
		fmt.Printf("Successfully protected:    %d\n", result.Stats.Succeeded)
		fmt.Printf("Copied without protection: %d\n", result.Stats.CopiedOnly)
		fmt.Printf("Failed:                    %d\n", result.Stats.Failed)
		fmt.Printf("Skipped:                   %d\n", result.Stats.Skipped)
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Tool:        %s +%s (timeout %ds)\n", cfg.Tool.Binary, cfg.Tool.Method, cfg.Tool.TimeoutSeconds)
		fmt.Printf("Database:    %s\n", cfg.Database.Type)
		if cfg.Delivery.Type != "" {
			fmt.Printf("Delivery:    %s\n", cfg.Delivery.Type)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past protection runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := r.FinishedAt.Sub(r.StartedAt)
			fmt.Printf("%s  %s  +%-13s  %-9s  found:%d ok:%d copied:%d failed:%d skipped:%d  %s\n",
				r.ID[:8],
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Method,
				r.Status,
				r.TotalFound,
				r.Succeeded,
				r.CopiedOnly,
				r.Failed,
				r.Skipped,
				duration.Truncate(1e6).String(),
			)
		}
		return nil
	},
}

// deliver command
var deliverCmd = &cobra.Command{
	Use:   "deliver",
	Short: "Upload a finished target tree to the configured delivery backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, _ := cmd.Flags().GetString("tree")

		a, err := newApp("")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		count, err := a.Deliver(ctx, tree)
		if err != nil {
			return fmt.Errorf("delivery failed: %w", err)
		}

		fmt.Printf("Delivered %d file(s)\n", count)
		return nil
	},
}

func init() {
	runCmd.Flags().StringP("source", "s", "", "Source project directory path")
	runCmd.Flags().StringP("target", "t", "", "Protected file output directory path")
	runCmd.Flags().StringP("filelist", "f", "", "Generate a filelist with this name in the target directory")
	runCmd.Flags().StringP("method", "m", "", "Protection method (autoprotect, auto1protect, auto2protect, auto3protect)")
	runCmd.Flags().StringP("log-dir", "l", "", "Log file directory (overrides config)")
	runCmd.Flags().BoolP("yes", "y", false, "Proceed without asking when the target directory exists")
	runCmd.Flags().StringArray("exclude-files", nil, "File patterns to exclude (e.g. '*_tb.v')")
	runCmd.Flags().StringArray("exclude-dirs", nil, "Directory patterns to exclude (e.g. test simulation)")
	runCmd.Flags().StringArray("copy-only-files", nil, "File patterns to copy without protection (e.g. '*.vh')")
	runCmd.Flags().StringArray("copy-only-dirs", nil, "Directory patterns to copy without protection (e.g. include)")
	runCmd.MarkFlagRequired("source")
	runCmd.MarkFlagRequired("target")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")

	deliverCmd.Flags().StringP("tree", "t", "", "Finished target tree to deliver")
	deliverCmd.MarkFlagRequired("tree")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(deliverCmd)
}
