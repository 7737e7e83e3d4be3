package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/stratadb/strata-go/client"
)

type logConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

type cliConfig struct {
	Addr   string        `yaml:"addr"`
	Log    logConfig     `yaml:"log"`
	Client client.Config `yaml:"client"`
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		confPath string
		addr     string
	)

	cmd := &cobra.Command{
		Use:           "strata-cli",
		Short:         "Command line driver for a strata database server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&confPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&addr, "addr", "a", "", "server address (host:port), overrides the config file")

	cmd.AddCommand(execCmd(&confPath, &addr))
	cmd.AddCommand(watchCmd(&confPath, &addr))

	return cmd
}

func execCmd(confPath, addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <command> [command...]",
		Short: "Run commands and print their result sets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(*confPath, *addr)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			for _, command := range args {
				if !c.Execute(command) {
					return fmt.Errorf("%s: %s", command, c.Err())
				}
				printResult(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
}

func watchCmd(confPath, addr *string) *cobra.Command {
	var poolSize int

	cmd := &cobra.Command{
		Use:   "watch <subscribe-command>",
		Short: "Subscribe and stream push notifications until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(*confPath, *addr)
			if err != nil {
				return err
			}
			defer c.Disconnect()

			if !c.Execute(args[0]) {
				return fmt.Errorf("%s: %s", args[0], c.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscribed: %s\n", c.PubSubID())

			pool, err := ants.NewPool(poolSize)
			if err != nil {
				return fmt.Errorf("new pool: %w", err)
			}
			defer pool.Release()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				for ctx.Err() == nil {
					if !c.WaitForPush(time.Second) {
						if c.Failed() {
							return fmt.Errorf("wait for push: %s", c.Err())
						}
						continue
					}

					notice := renderResult(c)
					if err := pool.Submit(func() {
						fmt.Fprint(cmd.OutOrStdout(), notice)
					}); err != nil {
						return fmt.Errorf("submit: %w", err)
					}
				}
				return nil
			})

			return g.Wait()
		},
	}

	cmd.Flags().IntVar(&poolSize, "pool-size", 64, "size of the notification handler pool")

	return cmd
}

func connect(confPath, addr string) (*client.Client, error) {
	conf, err := loadConfig(confPath)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		conf.Addr = addr
	}
	if conf.Addr == "" {
		return nil, fmt.Errorf("no server address: pass --addr or set addr in the config")
	}

	c, err := client.New(
		client.WithConfig(conf.Client),
		client.WithLogger(newLogger(conf.Log)),
	)
	if err != nil {
		return nil, fmt.Errorf("new client: %w", err)
	}

	if !c.Connect(conf.Addr) {
		return nil, fmt.Errorf("connect %s: %s", conf.Addr, c.Err())
	}

	return c, nil
}

func printResult(w io.Writer, c *client.Client) {
	fmt.Fprint(w, renderResult(c))
}

// renderResult snapshots the current response as text. The snapshot has to
// happen before the next network operation replaces the session state.
func renderResult(c *client.Client) string {
	var b strings.Builder

	if c.ColumnCount() == 0 {
		fmt.Fprintf(&b, "%s: ok\n", c.Action())
		return b.String()
	}

	b.WriteString(strings.Join(c.Columns(), "\t"))
	b.WriteByte('\n')

	for c.NextRow() {
		for i := 0; i < c.ColumnCount(); i++ {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(c.ValueByOrdinal(i))
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "(%d rows)\n", c.RowCount())
	return b.String()
}

func newLogger(conf logConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(conf.Level)}

	switch conf.Type {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
}

func parseLogLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func loadConfig(filePath string) (*cliConfig, error) {
	conf := &cliConfig{}

	paths := []string{filePath}
	if filePath == "" {
		paths = []string{"./strata.yaml", "conf/strata.yaml", "config/strata.yaml"}
	}

	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, conf); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}

		return conf, nil
	}

	if filePath != "" {
		return nil, fmt.Errorf("failed to find config in: %v", paths)
	}

	// no config file is fine; flags and defaults carry the day
	return conf, nil
}
