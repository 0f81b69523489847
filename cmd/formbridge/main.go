package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-formbridge/internal/di"
	"github.com/goliatone/go-formbridge/internal/runtimeconfig"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
	apihttp "github.com/goliatone/go-formbridge/internal/http"
)

const shutdownTimeout = 10 * time.Second

var configLoader = runtimeconfig.LoadEnv

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("formbridge: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	name := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name, args = args[0], args[1:]
	}
	switch name {
	case "serve":
		return runServe(ctx, args)
	case "token":
		return runToken(args, out)
	case "providers":
		return runProviders(args, out)
	case "import":
		return runImport(ctx, args, out)
	}
	return fmt.Errorf("unknown command %q (want serve, import, token or providers)", name)
}

func loadConfig(fs *flag.FlagSet, args []string) (runtimeconfig.Config, error) {
	envFile := fs.String("env", ".env", "Path to the .env file holding the site configuration")
	if err := fs.Parse(args); err != nil {
		return runtimeconfig.Config{}, err
	}
	return configLoader(*envFile)
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "Listen address (defaults to FORMBRIDGE_ADDR)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	container, closeStores, err := openContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("formbridge listening on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openContainer connects the configured stores, builds the container and
// migrates the bun tables. The returned func closes the connections.
func openContainer(ctx context.Context, cfg runtimeconfig.Config) (*di.Container, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	opts := []di.Option{}
	if !strings.EqualFold(cfg.Storage.Options, "memory") {
		db, err := di.OpenDatabase(cfg)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = db.Close() })
		opts = append(opts, di.WithBunDB(db))
	}
	if strings.EqualFold(cfg.Storage.Options, "mongo") {
		client, database, err := di.ConnectMongo(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		opts = append(opts, di.WithMongoDatabase(database))
	}

	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		closeAll()
		return nil, func() {}, fmt.Errorf("build container: %w", err)
	}
	if err := container.Migrate(ctx); err != nil {
		closeAll()
		return nil, func() {}, fmt.Errorf("migrate: %w", err)
	}
	return container, closeAll, nil
}

// runImport stores the form definitions named on the command line. Each
// file holds one JSON definition; re-importing a file replaces the form.
func runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	code := fs.String("code", "", "Form code overriding the definition's (single file only)")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		return errors.New("import: at least one definition file is required")
	}
	if *code != "" && len(files) > 1 {
		return errors.New("import: -code needs a single definition file")
	}

	container, closeStores, err := openContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	for _, path := range files {
		def, err := readDefinition(path)
		if err != nil {
			return err
		}
		if *code != "" {
			def.Code = *code
		}
		form, err := formstore.ImportDefinition(ctx, container.Forms(), def)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", form.ID, form.Title, path); err != nil {
			return err
		}
	}
	return nil
}

func readDefinition(path string) (formstore.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return formstore.Definition{}, err
	}
	defer f.Close()
	return formstore.DecodeDefinition(f)
}

// runToken prints a session token for an admin user, signed with the
// configured auth key.
func runToken(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fs.String("user", "1", "User id recorded as the token subject")
	roles := fs.String("roles", "administrator", "Comma separated roles granted to the session")
	ttl := fs.Duration("ttl", 12*time.Hour, "Token lifetime")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	secret := cfg.Keys.AuthSecret()
	if len(secret) == 0 {
		return errors.New("AUTH_KEY and AUTH_SALT are required to sign sessions")
	}
	token, err := apihttp.IssueSession(secret, apihttp.User{ID: *user, Roles: splitList(*roles)}, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

// runProviders lists the providers built from the configured manifests.
func runProviders(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("providers", flag.ContinueOnError)
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	cfg.Storage.Options = "memory"
	container, err := di.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	for _, m := range container.Manifests() {
		if _, err := fmt.Fprintf(out, "%s\t%s\tpriority=%d\t%s\n", m.Info.Slug, m.Info.Name, m.Info.Priority, m.Path); err != nil {
			return err
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
