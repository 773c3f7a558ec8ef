// Package main implements an interactive shell around the non-blocking client.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertbit/grumble"
	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/momentics/nioclient/client"
	"github.com/momentics/nioclient/control"
)

const banner = `
   _  ___ ___         _ _         _
  | \| (_) _ \  ___  | (_)___ _ _| |_
  | .' | | (_) |/ __| | | / -_) ' \  _|
  |_|\_|_|\___/ \___| |_|_\___|_||_\__|

   Non-blocking TCP client shell
   -----------------------------

`

// FileConfig mirrors client.Config for the JSON configuration file.
type FileConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	PollTimeout    string `json:"poll_timeout,omitempty"` // Go duration, e.g. "1s"
	ReadBufferSize int    `json:"read_buffer_size,omitempty"`
	MaxEvents      int    `json:"max_events,omitempty"`
	NoDelay        *bool  `json:"no_delay,omitempty"`
	SendBufferSize int    `json:"send_buffer_size,omitempty"`
	RecvBufferSize int    `json:"recv_buffer_size,omitempty"`
	ResolveTimeout string `json:"resolve_timeout,omitempty"` // Go duration
	PooledBuffers  bool   `json:"pooled_buffers,omitempty"`
	LoopCPU        *int   `json:"loop_cpu,omitempty"` // pin the event loop when set
}

// Global state.
var cli *client.Client

// LoadConfig reads the optional configuration file. An empty path yields the defaults.
func LoadConfig(configPath string) (*client.Config, error) {
	cfg := client.DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %v", err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %v", absPath, err)
	}

	fc := new(FileConfig)
	if err := json.Unmarshal(data, fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %v", absPath, err)
	}
	if err := fc.apply(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %v", absPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies the fields present in the file over cfg.
func (fc *FileConfig) apply(cfg *client.Config) error {
	if fc.Host != "" {
		cfg.Host = fc.Host
	}
	if fc.Port != 0 {
		if fc.Port < 1 || fc.Port > 65535 {
			return fmt.Errorf("port %d out of range", fc.Port)
		}
		cfg.Port = fc.Port
	}
	if fc.PollTimeout != "" {
		d, err := time.ParseDuration(fc.PollTimeout)
		if err != nil {
			return fmt.Errorf("poll_timeout: %v", err)
		}
		cfg.PollTimeout = d
	}
	if fc.ReadBufferSize != 0 {
		cfg.ReadBufferSize = fc.ReadBufferSize
	}
	if fc.MaxEvents != 0 {
		cfg.MaxEvents = fc.MaxEvents
	}
	if fc.NoDelay != nil {
		cfg.NoDelay = *fc.NoDelay
	}
	if fc.ResolveTimeout != "" {
		d, err := time.ParseDuration(fc.ResolveTimeout)
		if err != nil {
			return fmt.Errorf("resolve_timeout: %v", err)
		}
		cfg.ResolveTimeout = d
	}
	cfg.SendBufferSize = fc.SendBufferSize
	cfg.RecvBufferSize = fc.RecvBufferSize
	cfg.PooledBuffers = fc.PooledBuffers
	if fc.LoopCPU != nil {
		cfg.PinLoop = true
		cfg.LoopCPU = *fc.LoopCPU
	}
	return nil
}

// RenderStatus formats the current connection as a table.
func RenderStatus(c *client.Client) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Connection ID", "Remote", "State", "Error"})

	id := c.ConnID()
	if id == "" {
		id = "-"
	}
	errText := "-"
	if err := c.Err(); err != nil {
		errText = err.Error()
	}
	remote := c.Remote()
	if remote == "" {
		remote = "-"
	}
	t.AppendRow(table.Row{id, remote, c.State().String(), errText})
	return t.Render()
}

// RenderStats formats a metrics snapshot as a two-column table sorted by name.
func RenderStats(snapshot map[string]any) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	for _, k := range control.Keys(snapshot) {
		t.AppendRow(table.Row{k, snapshot[k]})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1},
		{Number: 2, Align: text.AlignRight},
	})
	return t.Render()
}

// AddCommands registers the shell commands.
func AddCommands(app *grumble.App, cfg *client.Config) {
	app.AddCommand(&grumble.Command{
		Name:    "connect",
		Aliases: []string{"open"},
		Help:    "connect to host and port, replacing the current connection",
		Args: func(a *grumble.Args) {
			a.String("host", "remote host, defaults to the configured host", grumble.Default(""))
			a.Int("port", "remote port, defaults to the configured port", grumble.Default(0))
		},
		Run: func(c *grumble.Context) error {
			host := c.Args.String("host")
			if host == "" {
				host = cfg.Host
			}
			port := c.Args.Int("port")
			if port == 0 {
				port = cfg.Port
			}
			if err := cli.Start(host, port); err != nil {
				log.Error().Err(err).Str("host", host).Int("port", port).Msg("Failed to start connection")
				return nil
			}
			log.Info().Str("conn_id", cli.ConnID()).Str("remote", cli.Remote()).Msg("Connection started")
			return nil
		},
	})
	app.AddCommand(&grumble.Command{
		Name: "send",
		Help: "send text on the current connection",
		Args: func(a *grumble.Args) {
			a.StringList("text", "words to send, joined by single spaces")
		},
		Run: func(c *grumble.Context) error {
			msg := strings.Join(c.Args.StringList("text"), " ")
			sent, err := cli.Send(msg)
			switch {
			case err != nil:
				log.Error().Err(err).Msg("Send failed")
			case !sent:
				log.Info().Msg("Quit token not sent")
			default:
				log.Info().Int("bytes", len(msg)).Msg("Sent")
			}
			return nil
		},
	})
	app.AddCommand(&grumble.Command{
		Name:    "stop",
		Aliases: []string{"close"},
		Help:    "close the current connection and stop the event loop",
		Run: func(c *grumble.Context) error {
			if err := cli.Stop(); err != nil {
				log.Warn().Err(err).Msg("Event loop ended with error")
				return nil
			}
			log.Info().Msg("Stopped")
			return nil
		},
	})
	app.AddCommand(&grumble.Command{
		Name: "status",
		Help: "show the current connection",
		Run: func(c *grumble.Context) error {
			c.App.Println(RenderStatus(cli))
			return nil
		},
	})
	app.AddCommand(&grumble.Command{
		Name:    "stats",
		Aliases: []string{"metrics"},
		Help:    "show client counters",
		Run: func(c *grumble.Context) error {
			c.App.Println(RenderStats(cli.Metrics()))
			return nil
		},
	})
}

func main() {
	configureLogging()

	cfg := client.DefaultConfig()
	app := setupCLI(cfg)
	AddCommands(app, cfg)

	if err := app.Run(); err != nil {
		log.Fatal().Msg(err.Error())
	}
}

// configureLogging sets up zerolog with a console writer for interactive use.
func configureLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// setupCLI builds the grumble app. cfg is filled from the config file on init.
func setupCLI(cfg *client.Config) *grumble.App {
	var histFile string
	home, err := os.UserHomeDir()
	if err != nil {
		histFile = ".nioclient"
	} else {
		histFile = filepath.Join(home, ".nioclient")
	}

	app := grumble.New(&grumble.Config{
		Name:        "nioclient",
		Prompt:      "nioclient » ",
		HistoryFile: histFile,
		Flags: func(f *grumble.Flags) {
			f.String("c", "config", "", "path to JSON configuration file")
			f.Bool("v", "verbose", false, "enable debug logging")
		},
	})
	app.SetPrintASCIILogo(func(a *grumble.App) {
		fmt.Print(banner)
	})

	app.OnInit(func(a *grumble.App, flags grumble.FlagMap) error {
		if flags.Bool("verbose") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		loaded, err := LoadConfig(flags.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}
		*cfg = *loaded
		cfg.Logger = &log.Logger
		cli = client.New(cfg)
		return nil
	})

	app.OnClose(func() error {
		if cli == nil {
			return nil
		}
		if err := cli.Stop(); err != nil {
			log.Debug().Err(err).Msg("Event loop ended with error")
		}
		return nil
	})

	return app
}
