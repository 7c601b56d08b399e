package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"txtension/internal/config"
	"txtension/internal/events"
	"txtension/internal/models"
	"txtension/internal/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	configFile string
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:          "txtension",
		Short:        "Background service for the TXtension browser extension",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.New(), c.configFile)
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Config file (json, yaml or toml)")

	rootCmd.AddCommand(c.newServeCommand())
	rootCmd.AddCommand(c.newConfigCommand())
	rootCmd.AddCommand(c.newSettingsCommand())
	rootCmd.AddCommand(c.newSendCommand())
	rootCmd.AddCommand(c.newKeysCommand())
	return rootCmd
}

// withApp runs fn against a started App and shuts it down afterwards.
func (c *cli) withApp(ctx context.Context, fn func(a *App) error) error {
	app := NewApp(c.cfg)
	if err := app.startup(ctx); err != nil {
		return err
	}
	defer app.shutdown(ctx)
	return fn(app)
}

func (c *cli) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the message API to the extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			events.EnableLogEmitter()

			return c.withApp(ctx, func(a *App) error {
				a.services.KeepAlive.Start(ctx)
				srv := server.New(server.Config{Addr: c.cfg.ListenAddr, GinMode: c.cfg.GinMode}, a.services, a.registry)

				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start() }()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Stop(shutdownCtx)
			})
		},
	}
}

func (c *cli) newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := c.cfg
			if shown.Keyring.Password != "" {
				shown.Keyring.Password = "********"
			}
			return printJSON(cmd, shown)
		},
	}
}

func (c *cli) newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *App) error {
				current, err := a.services.Settings.Load(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd, maskKeys(current))
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set PATCH_JSON",
		Short: "Merge a partial settings document into the stored settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *App) error {
				updated, err := a.services.Settings.Update(cmd.Context(), []byte(args[0]))
				if err != nil {
					return err
				}
				return printJSON(cmd, maskKeys(updated))
			})
		},
	})
	return cmd
}

func (c *cli) newSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send ACTION [JSON]",
		Short: "Send one message to the router and print the response envelope",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req models.MessageRequest
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &req); err != nil {
					return fmt.Errorf("invalid message JSON: %w", err)
				}
			}
			req.Action = args[0]
			return c.withApp(cmd.Context(), func(a *App) error {
				return printJSON(cmd, a.services.Messages.Handle(cmd.Context(), req))
			})
		},
	}
}

func (c *cli) newKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys in the keyring",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set PROVIDER API_KEY",
		Short: "Store an API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *App) error {
				keys, err := a.keys()
				if err != nil {
					return err
				}
				if err := keys.StoreApiKey(args[0], []byte(strings.TrimSpace(args[1]))); err != nil {
					return err
				}
				cmd.Printf("stored API key for %s\n", args[0])
				return nil
			})
		},
	})

	var reveal bool
	getCmd := &cobra.Command{
		Use:   "get PROVIDER",
		Short: "Print a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *App) error {
				keys, err := a.keys()
				if err != nil {
					return err
				}
				key, err := keys.GetApiKey(args[0])
				if err != nil {
					return err
				}
				if key == "" {
					return fmt.Errorf("no API key stored for %s", args[0])
				}
				if !reveal {
					key = mask(key)
				}
				cmd.Println(key)
				return nil
			})
		},
	}
	getCmd.Flags().BoolVar(&reveal, "reveal", false, "Print the key unmasked")
	cmd.AddCommand(getCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete PROVIDER",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *App) error {
				keys, err := a.keys()
				if err != nil {
					return err
				}
				return keys.DeleteApiKey(args[0])
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List providers with a stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *App) error {
				keys, err := a.keys()
				if err != nil {
					return err
				}
				items, err := keys.ListApiKeys()
				if err != nil {
					return err
				}
				for _, item := range items {
					cmd.Println(item["provider"])
				}
				return nil
			})
		},
	})
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func maskKeys(s models.Settings) models.Settings {
	s = s.Clone()
	for id, p := range s.ProviderSettings {
		p.APIKey = mask(p.APIKey)
		s.ProviderSettings[id] = p
	}
	return s
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
