// Command websearch serves the search_web tool.
//
//	websearch [-config path] serve          HTTP API (and MCP at /mcp)
//	websearch [-config path] mcp            MCP over stdio
//	websearch [-config path] query <text>   one search, envelope on stdout
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jonwraymond/websearch/httpapi"
	"github.com/jonwraymond/websearch/mcpserver"
	"github.com/jonwraymond/websearch/observe"
	"github.com/jonwraymond/websearch/search"
)

var version = "dev"

const usage = `websearch - Google Custom Search tool server

USAGE:
    websearch [FLAGS] COMMAND

COMMANDS:
    serve           Run the HTTP API
    mcp             Run an MCP server on stdin/stdout
    query TEXT      Run one search and print the result envelope

FLAGS:
    -config PATH    Config file (default: websearch.yaml, optional)
    -env PATH       Dotenv file loaded before the config (default: .env, optional)

Environment variables prefixed WEBSEARCH_ override the config file.
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "websearch: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("websearch", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	cfgPath := fs.String("config", "websearch.yaml", "config file")
	envPath := fs.String("env", ".env", "dotenv file")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envPath, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "serve", "mcp", "query":
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	if cmd == "query" && len(rest) == 0 {
		return errors.New("query: missing search text")
	}

	a, err := newApp(ctx, *cfgPath)
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "serve":
		return serve(ctx, a)
	case "mcp":
		return mcpserver.New(a.tool, version, a.logger).ServeStdio(ctx, os.Stdin, stdout)
	default:
		return query(ctx, a, strings.Join(rest, " "), stdout)
	}
}

func serve(ctx context.Context, a *app) error {
	cfg := a.cfg.Server
	mcp := mcpserver.New(a.tool, version, a.logger)
	srv, err := httpapi.New(httpapi.Config{
		Addr:         cfg.Addr,
		CORSOrigins:  cfg.CORSOrigins,
		ReadTimeout:  cfg.Timeouts.Read,
		WriteTimeout: cfg.Timeouts.Write,
		IdleTimeout:  cfg.Timeouts.Idle,
	}, httpapi.Deps{
		Tool:          a.tool,
		Health:        a.health,
		Authenticator: a.authn,
		MCP:           mcp.HTTPHandler(),
		Registerer:    a.registry,
		Gatherer:      a.registry,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func query(ctx context.Context, a *app, text string, stdout io.Writer) error {
	env := a.tool.Invoke(ctx, search.Input{Query: text})
	if _, err := fmt.Fprintln(stdout, env.String()); err != nil {
		return err
	}
	if env.IsError() {
		a.logger.Warn(ctx, "search failed", observe.Field{Key: "error", Value: env.Error})
		return errors.New(env.Error)
	}
	return nil
}
