package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/br/pkg/cliclient"
	"github.com/entrhq/br/pkg/daemon"
	"github.com/entrhq/br/pkg/instance"
	"github.com/entrhq/br/pkg/logging"
	"github.com/entrhq/br/pkg/registry"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Launch a daemon instance",
	RunE:  runStart,
}

// internalRunDaemonCmd is the hidden re-exec target start uses to detach
// a background daemon process; it is never advertised to users.
var internalRunDaemonCmd = &cobra.Command{
	Use:    "__run-daemon",
	Hidden: true,
	RunE:   runInternalDaemon,
}

var (
	flagHeadless     bool
	flagViewport     string
	flagAdblock      bool
	flagAdblockBase  string
	flagAdblockLists string
	flagForeground   bool
	flagHumanlike    bool
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(internalRunDaemonCmd)

	startCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run Chromium headless")
	startCmd.Flags().StringVar(&flagViewport, "viewport", "1280x720", "viewport size WxH")
	startCmd.Flags().BoolVar(&flagAdblock, "adblock", false, "enable ad-blocking")
	startCmd.Flags().StringVar(&flagAdblockBase, "adblock-base", "adsandtrackers", "adblock base tier: none|adsandtrackers|full|ads")
	startCmd.Flags().StringVar(&flagAdblockLists, "adblock-lists", "", "comma-separated filter list URLs or file paths")
	startCmd.Flags().BoolVar(&flagForeground, "foreground", false, "run in the foreground instead of detaching")
	startCmd.Flags().BoolVar(&flagHumanlike, "humanlike", false, "add human-like delays to navigation and typing")
}

func buildOptionsFromFlags() (instance.Options, error) {
	opts := instance.DefaultOptions()
	opts.Name = instanceName

	if err := instance.LoadConfigFile(&opts, ""); err != nil {
		return opts, err
	}
	instance.ApplyEnv(&opts)

	f := startCmd.Flags()
	if f.Changed("headless") {
		opts.Headless = flagHeadless
	}
	if f.Changed("adblock") {
		opts.Adblock = flagAdblock
	}
	if f.Changed("adblock-base") {
		opts.AdblockBase = instance.AdblockBase(flagAdblockBase)
	}
	opts.Foreground = flagForeground
	if f.Changed("humanlike") {
		opts.HumanLike = flagHumanlike
	}
	if flagAdblockLists != "" {
		opts.AdblockLists = strings.Split(flagAdblockLists, ",")
	}

	if f.Changed("viewport") {
		width, height, err := instance.ParseViewport(flagViewport)
		if err != nil {
			return opts, err
		}
		opts.ViewportWidth = width
		opts.ViewportHeight = height
	}

	return opts, nil
}

func runStart(cmd *cobra.Command, args []string) error {
	opts, err := buildOptionsFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}

	reg, err := registry.New("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cliclient.ExitError)
	}
	if entry, ok, _ := reg.Lookup(opts.Name); ok {
		fmt.Printf("instance %q already running on port %d\n", opts.Name, entry.Port)
		return nil
	}

	if opts.Foreground {
		return runForeground(opts, reg)
	}
	return runDetached(opts)
}

func runForeground(opts instance.Options, reg *registry.Registry) error {
	logger, err := logging.NewLogger(opts.Name, "daemon")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	defer logger.Close()

	sup := daemon.NewSupervisor(opts.Name, opts, logger, reg)
	return sup.Run()
}

// runDetached re-execs the current binary as the hidden daemon
// subcommand, detached into its own session, and waits on its stdout for
// the "running on port N" line before releasing it and returning.
func runDetached(opts instance.Options) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	child := exec.Command(exe, "__run-daemon")
	child.Env = append(os.Environ(), optionsToEnv(opts)...)
	child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	stdout, err := child.StdoutPipe()
	if err != nil {
		return err
	}
	if err := child.Start(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(stdout)
	var startupLine string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "running on port") {
			startupLine = line
			break
		}
	}
	if startupLine == "" {
		fmt.Fprintln(os.Stderr, "daemon failed to start")
		os.Exit(cliclient.ExitError)
	}

	fmt.Println(startupLine)
	return child.Process.Release()
}

func optionsToEnv(opts instance.Options) []string {
	return []string{
		"BR_INSTANCE=" + opts.Name,
		"BR_PORT=" + strconv.Itoa(opts.Port),
		"BR_HEADLESS=" + strconv.FormatBool(opts.Headless),
		"BR_VIEWPORT_WIDTH=" + strconv.Itoa(opts.ViewportWidth),
		"BR_VIEWPORT_HEIGHT=" + strconv.Itoa(opts.ViewportHeight),
		"BR_ADBLOCK=" + strconv.FormatBool(opts.Adblock),
		"BR_ADBLOCK_BASE=" + string(opts.AdblockBase),
		"BR_ADBLOCK_LISTS=" + strings.Join(opts.AdblockLists, ","),
		"BR_HUMANLIKE=" + strconv.FormatBool(opts.HumanLike),
	}
}

// runInternalDaemon is the entrypoint for the detached child process: it
// rebuilds Options purely from the environment start set and runs the
// Supervisor until it exits.
func runInternalDaemon(cmd *cobra.Command, args []string) error {
	opts := instance.DefaultOptions()
	instance.ApplyEnv(&opts)

	reg, err := registry.New("")
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(opts.Name, "daemon")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	defer logger.Close()

	sup := daemon.NewSupervisor(opts.Name, opts, logger, reg)
	return sup.Run()
}
