package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	rate "github.com/wallstreetcn/rate/redis"

	"github.com/icakad/icakad-go/internal/config"
	"github.com/icakad/icakad-go/internal/server/httpserver"
	"github.com/icakad/icakad-go/internal/store"
)

func main() {
	var (
		addr      string
		redisURI  string
		publicURL string
		token     string
		debug     bool
	)

	cmd := &cobra.Command{
		Use:          "icakad-devserver",
		Short:        "Serve the short-link and paste protocols locally",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

			opts := httpserver.Options{
				PublicURL:  publicURL,
				Token:      token,
				TrustProxy: config.TrustProxy(),
				Logger:     log,
			}

			var s store.Store
			if redisURI == "" {
				log.Info().Msg("using in-memory store")
				s = store.NewMemory()
			} else {
				rs, err := store.NewRedis(redisURI, config.RedisPassword, config.RedisDB)
				if err != nil {
					log.Error().Err(err).Msg("could not connect to redis")
					return err
				}
				defer rs.Close()
				log.Info().Str("addr", redisURI).Msg("connected to redis")
				s = rs

				// The rate limiter keeps its own connection.
				host, port := store.ParseRedisURI(redisURI)
				if err := rate.SetRedis(&rate.ConfigRedis{
					Host: host,
					Port: port,
					Auth: config.RedisPassword,
				}); err != nil {
					log.Error().Err(err).Msg("could not initialize rate limiter")
					return err
				}
				opts.Allow = httpserver.RedisLimiter(5 * time.Second)
			}

			srv := &http.Server{
				Handler:           httpserver.NewHandler(s, opts),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				log.Error().Err(err).Msg("could not listen")
				return err
			}

			log.Info().Str("addr", addr).Str("links", "http://"+addr+config.LinksPrefix).Msg("starting http server")
			if err := serve(cmd.Context(), srv, ln); err != nil {
				log.Error().Err(err).Msg("http server failed")
				return err
			}
			log.Info().Msg("http server stopped")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&addr, "addr", config.DevServerAddr, "listen address")
	f.StringVar(&redisURI, "redis", config.RedisURI(), "Redis host:port; empty keeps everything in memory (default $REDIS_URI)")
	f.StringVar(&publicURL, "public-url", "", "base of the paste URLs handed out (default http://<host>)")
	f.StringVar(&token, "token", os.Getenv(config.EnvToken), "require this bearer token on writes")
	f.BoolVar(&debug, "debug", false, "debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

const shutdownTimeout = 5 * time.Second

// serve runs srv on ln until ctx is done, then returns once in-flight
// requests have finished or shutdownTimeout has passed.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(sctx)
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
