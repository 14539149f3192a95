package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/sw-qps/hlsrun/internal/log"
	"github.com/sw-qps/hlsrun/internal/model"
	"gopkg.in/yaml.v3"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = "hlsrun.yaml"

var (
	userConfigPath string // /default/config/path/hlsrun on given OS
	configPath     string // actual config file used (if loaded)
	config         model.Config
	logCloser      io.Closer = nopCloser{}

	// flags and HLSRUN_* environment, flags win
	v = viper.New()
)

func init() {
	d, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	userConfigPath = filepath.Join(d, "hlsrun")
}

func main() {
	// root flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file to load - default is "+configName+" in "+userConfigPath+" or in current directory")
	flags.Bool("verbose", false, "verbose logging")
	rootCmd.Flags().String("dir", "", "Work directory with the job scripts - default is dir from config or current directory")
	rootCmd.Flags().Bool("skip-probe", false, "don't run the tool to check it works, only look it up in PATH")

	for _, name := range []string{"config", "verbose"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	for _, name := range []string{"dir", "skip-probe"} {
		_ = v.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
	v.SetEnvPrefix("hlsrun")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// never print messages
	rootCmd.SilenceErrors = true

	// parse or create a config, setup logging
	rootCmd.PersistentPreRunE = initHLSRun
	rootCmd.PersistentPostRun = func(*cobra.Command, []string) {
		_ = logCloser.Close()
	}

	rootCmd.AddCommand(versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("hlsrun failed", "err", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "hlsrun",
	Short:        "Launches the HLS synthesis jobs in parallel and reports their artifacts",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         doRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provide version of a hlsrun",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("hlsrun: version info not available")
			return
		}

		if configPath != "" {
			fmt.Printf("config: %s\n", configPath)
		}
		fmt.Printf("hlsrun: %s\n", info.Main.Version)
		fmt.Printf("go:     %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit: %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:   %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:  %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func doRun(cmd *cobra.Command, _ []string) error {
	dir, err := workDir(v.GetString("dir"), config.Dir)
	if err != nil {
		return err
	}
	r := runner{
		config:    config,
		dir:       dir,
		out:       os.Stdout,
		skipProbe: v.GetBool("skip-probe"),
	}
	return r.run(cmd.Context())
}

// workDir picks the --dir flag, then the config, then the current directory.
func workDir(flag, cfg string) (string, error) {
	dir := flag
	if dir == "" {
		dir = cfg
	}
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving work dir %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("work dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("work dir %s: not a directory", abs)
	}
	return abs, nil
}

func initHLSRun(cmd *cobra.Command, _ []string) error {
	configPath = v.GetString("config")
	if configPath == "" {
		for _, d := range []string{userConfigPath, "."} {
			path := filepath.Join(d, configName)
			if exists(path) {
				configPath = path
				break
			}
		}
	}

	var err error
	if configPath == "" {
		configPath = filepath.Join(userConfigPath, configName)
		config = storeDefault(configPath)
	} else {
		config, err = loadConfig(configPath)
		if err != nil {
			return err
		}
	}

	// --verbose has a precedence over config file
	if v.GetBool("verbose") {
		config.Verbose = true
	}

	// initialize logging
	w, closer, err := log.Open(config.Log)
	if err != nil {
		return err
	}
	logCloser = closer
	slog.SetDefault(log.New(w, config.Verbose))

	slog.Debug("hlsrun init", "configPath", configPath)
	slog.Debug("hlsrun init", "config", config)
	return nil
}

func loadConfig(path string) (model.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Config{}, fmt.Errorf("opening config file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	cfg, err := model.LoadConfig(f)
	if err != nil {
		for _, d := range model.ConfigErrors(err) {
			slog.Error("invalid config", d.Attr("detail"))
		}
		return model.Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return model.Config{}, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// storeDefault writes the default configuration to path so the operator has
// something to edit. A failure to write is not fatal.
func storeDefault(path string) model.Config {
	cfg := model.DefaultConfig()
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err == nil {
		err = writeConfig(path, cfg)
	}
	if err != nil {
		slog.Warn("can't store default configuration", "path", path, "error", err)
	}
	return cfg
}

func writeConfig(path string, cfg model.Config) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("storing configuration: %w", err)
	}
	return enc.Close()
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
