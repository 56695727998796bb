package main

import (
	"github.com/Veraticus/medicoder/internal/config"
	"github.com/Veraticus/medicoder/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve coding conversations over an HTTP JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			tlsConfig, err := config.LoadTLSConfig(viper.GetViper())
			if err != nil {
				return err
			}

			srv := server.New(a.newEngine, a.catalog, a.logger,
				server.WithSessionTTL(viper.GetDuration(config.KeyServerTTL)))
			return srv.ListenAndServe(cmd.Context(), viper.GetString(config.KeyServerAddr), tlsConfig)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().Duration("session-ttl", server.DefaultSessionTTL, "drop sessions idle this long (0 disables)")
	_ = viper.BindPFlag(config.KeyServerAddr, cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(config.KeyServerTLS, cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag(config.KeyServerTTL, cmd.Flags().Lookup("session-ttl"))
	return cmd
}
