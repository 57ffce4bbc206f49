package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vivjson/vivjson"
	"github.com/vivjson/vivjson/internal/cli/config"
	"github.com/vivjson/vivjson/internal/devserver"
	"github.com/vivjson/vivjson/internal/display"
	"github.com/vivjson/vivjson/internal/stdlib"
)

// NewServeCommand creates the serve command: the HTTP+WebSocket dev
// console.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dev console server",
		Long: `Start an HTTP server that evaluates a posted VivJson source and mirrors
every result over WebSocket to attached console clients.

  POST /eval    {"source": "..."}  evaluate and return the result
  GET  /ws      attach a console client
  GET  /healthz liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync()

			eval := func(source string) (string, error) {
				vcfg := vivjson.Config{
					MaxArraySize: cfg.Limits.MaxArraySize,
					MaxDepth:     cfg.Limits.MaxDepth,
					MaxLoopTimes: cfg.Limits.MaxLoopTimes,
					Stdlib:       stdlib.New(),
				}
				result := vivjson.Run([]vivjson.Input{vivjson.NewCode(source, "console")}, vcfg)
				if result.Err != nil {
					return "", result.Err
				}
				return display.Stringify(result.Value, "", "")
			}

			var opts []devserver.Option
			if cfg.Server.AccessTokenHash != "" {
				opts = append(opts, devserver.WithAccessTokenHash(cfg.Server.AccessTokenHash))
			}
			server := devserver.New(logger, eval, opts...)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			logger.Info("dev console listening", zap.String("addr", addr))
			return http.ListenAndServe(addr, server.Router())
		},
	}
}
