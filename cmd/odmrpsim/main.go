// Command odmrpsim runs an interactive ODMRP mesh simulator: it reads
// control-surface commands from stdin (see console.helpText) and prints a
// response to stdout for each one, while a background scheduler advances
// logical time for every node in the mesh.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hakeris1010/odmrp-sim/internal/clock"
	"github.com/hakeris1010/odmrp-sim/internal/config"
	"github.com/hakeris1010/odmrp-sim/internal/console"
	"github.com/hakeris1010/odmrp-sim/internal/scheduler"
	"github.com/hakeris1010/odmrp-sim/internal/simlog"
	"github.com/hakeris1010/odmrp-sim/internal/topology"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var topologyPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "odmrpsim",
		Short: "Interactive ODMRP ad-hoc mesh routing simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configPath, topologyPath, logLevel)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML file overriding the simulator's default tunables")
	cmd.Flags().StringVar(&topologyPath, "topology", "", "optional link up/down schedule file driven alongside the console")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "logrus level: debug, info, warn, error")

	return cmd
}

func run(cmd *cobra.Command, configPath, topologyPath, logLevel string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("odmrpsim: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadYAML(configPath)
	if err != nil {
		return fmt.Errorf("odmrpsim: %w", err)
	}

	runID := uuid.NewString()
	log := simlog.New(runID)
	log.Event("run_start").With(simlog.Fields{"config": configPath}).Info("starting simulator")

	sched := scheduler.New(cfg, clock.New(), log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go sched.Run(ctx)

	if topologyPath != "" {
		if err := loadAndDriveTopology(ctx, topologyPath, sched); err != nil {
			return fmt.Errorf("odmrpsim: %w", err)
		}
	}

	con := console.New(sched)
	repl(cmd, con)

	sched.Shutdown()
	return nil
}

// loadAndDriveTopology parses the link up/down schedule at path and starts a
// background goroutine that applies due events once per tick against sched,
// stopping when ctx is cancelled.
func loadAndDriveTopology(ctx context.Context, path string, sched *scheduler.Scheduler) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read topology schedule: %w", err)
	}
	lines := strings.Split(string(data), "\n")
	schedule, err := topology.Parse(lines)
	if err != nil {
		return fmt.Errorf("parse topology schedule: %w", err)
	}

	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !schedule.Pending() {
					return
				}
				schedule.Drive(time.Since(start).Milliseconds(), sched)
			}
		}
	}()
	return nil
}

// repl reads one command per line from stdin and writes the response to
// stdout, until the console reports an exit command or stdin closes.
func repl(cmd *cobra.Command, con *console.Console) {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	fmt.Fprintln(out, "odmrpsim ready. Type 'help' for commands.")
	for scanner.Scan() {
		resp, exit := con.Dispatch(scanner.Text())
		if resp != "" {
			fmt.Fprintln(out, resp)
		}
		if exit {
			return
		}
	}
}
