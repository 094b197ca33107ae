package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-github-auth/auth"
	"github.com/jrsteele09/go-github-auth/auth/authflowrepo"
	"github.com/jrsteele09/go-github-auth/auth/sessions"
	"github.com/jrsteele09/go-github-auth/github"
	"github.com/jrsteele09/go-github-auth/internal/config"
	"github.com/jrsteele09/go-github-auth/kv"
	"github.com/jrsteele09/go-github-auth/server"
	"github.com/jrsteele09/go-github-auth/token/jwt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(c)
	displayAppname(c.GetAppName())

	stores, err := openStores(c)
	if err != nil {
		return err
	}
	defer stores.close()

	exchanger := github.New(github.Config{
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		Scope:        c.GetScope(),
		AuthURL:      c.GetAuthURL(),
		TokenURL:     c.GetTokenURL(),
		APIURL:       c.GetAPIURL(),
	})
	authService, err := auth.NewAuthorizationService(
		auth.Repos{
			Sessions: sessions.NewKVRepo(stores.sessions),
			States:   authflowrepo.NewKVRepo(stores.states),
		},
		exchanger,
		jwt.NewCodec(c.GetJWTSecret()),
		c.GetAllowedOrigins(),
		auth.WithExpiry(c.GetStateTimeout(), c.GetSessionExpiry()),
	)
	if err != nil {
		return fmt.Errorf("creating authorization service: %w", err)
	}
	handler, err := server.New(c, authService)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(srv, c)
	})
	g.Go(func() error {
		return kv.RunJanitor(gctx, sweepInterval, logSweep, stores.sweepers)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(srv)
	})
	return g.Wait()
}

func setupLogger(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

type kvStores struct {
	sessions kv.Namespace
	states   kv.Namespace
	sweepers map[string]kv.Sweeper
	close    func()
}

// openStores binds the session and state namespaces to the configured backend
func openStores(c config.Config) (*kvStores, error) {
	switch c.GetKVBackend() {
	case config.KVBackendBolt:
		db, err := kv.OpenBolt(filepath.Clean(c.GetKVPath()))
		if err != nil {
			return nil, fmt.Errorf("opening kv store: %w", err)
		}
		sessionsNS, err := db.Namespace(c.GetSessionsNamespace())
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		statesNS, err := db.Namespace(c.GetStatesNamespace())
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Str("path", c.GetKVPath()).Msg("Using bolt kv store")
		return &kvStores{
			sessions: sessionsNS,
			states:   statesNS,
			sweepers: map[string]kv.Sweeper{
				c.GetSessionsNamespace(): sessionsNS,
				c.GetStatesNamespace():   statesNS,
			},
			close: func() {
				if err := db.Close(); err != nil {
					log.Err(err).Msg("Closing kv store")
				}
			},
		}, nil
	default:
		sessionsNS, statesNS := kv.NewMemory(), kv.NewMemory()
		log.Warn().Msg("Using in-memory kv store; sessions are lost on restart")
		return &kvStores{
			sessions: sessionsNS,
			states:   statesNS,
			sweepers: map[string]kv.Sweeper{
				c.GetSessionsNamespace(): sessionsNS,
				c.GetStatesNamespace():   statesNS,
			},
			close: func() {},
		}, nil
	}
}

func logSweep(name string, removed int, err error) {
	if err != nil {
		log.Err(err).Str("namespace", name).Msg("Sweeping expired entries")
		return
	}
	if removed > 0 {
		log.Debug().Str("namespace", name).Int("removed", removed).Msg("Swept expired entries")
	}
}

func listenAndServe(server *http.Server, c config.Config) error {
	var err error
	if domain := c.GetAutocertDomain(); domain != "" {
		m := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(domain),
			Cache:      autocert.DirCache(filepath.Join(filepath.Dir(c.GetKVPath()), "autocert")),
		}
		server.Addr = ":443"
		server.TLSConfig = m.TLSConfig()
		go func() {
			// ACME http-01 challenges and the https redirect
			if err := http.ListenAndServe(":80", m.HTTPHandler(nil)); err != nil {
				log.Err(err).Msg("ACME challenge listener")
			}
		}()
		log.Info().Str("domain", domain).Msg("Server listening on :443")
		err = server.ListenAndServeTLS("", "")
	} else {
		log.Info().Msgf("Server listening on %s", server.Addr)
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
