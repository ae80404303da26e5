package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/mkrukov/shade/app/server"
	"github.com/mkrukov/shade/app/site"
	"github.com/mkrukov/shade/app/store"
)

var opts struct {
	DB string `short:"d" long:"db" env:"SHADE_DB" default:"shade.db" description:"database URL (sqlite file or postgres://...)"`

	Site struct {
		Dir       string `long:"dir" env:"DIR" default:"public" description:"static site directory (generator output)"`
		CacheSize int    `long:"cache-size" env:"CACHE_SIZE" default:"1000" description:"max cached pages"`
		NoWatch   bool   `long:"no-watch" env:"NO_WATCH" description:"disable page cache invalidation on site changes"`
		Check     bool   `long:"check" env:"CHECK" description:"verify pages carry theme hooks on start"`
	} `group:"site" namespace:"site" env-namespace:"SHADE_SITE"`

	Server struct {
		Address     string        `long:"address" env:"ADDRESS" default:":8080" description:"server listen address"`
		ReadTimeout time.Duration `long:"read-timeout" env:"READ_TIMEOUT" default:"5s" description:"read timeout"`
		BaseURL     string        `long:"base-url" env:"BASE_URL" description:"base URL path for reverse proxy (e.g., /blog)"`
	} `group:"server" namespace:"server" env-namespace:"SHADE_SERVER"`

	Admin struct {
		PasswordHash string        `long:"password-hash" env:"PASSWORD_HASH" description:"bcrypt hash for admin password (enables admin API)"`
		LoginTTL     time.Duration `long:"login-ttl" env:"LOGIN_TTL" default:"24h" description:"admin session TTL"`
	} `group:"admin" namespace:"admin" env-namespace:"SHADE_ADMIN"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `long:"version" description:"show version and exit"`
}

var revision = "unknown"

func main() {
	fmt.Printf("shade %s\n", revision)

	p := flags.NewParser(&opts, flags.PassDoubleDash|flags.HelpFlag)
	if _, err := p.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			p.WriteHelp(os.Stderr)
			os.Exit(2)
		}
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	if opts.Version {
		os.Exit(0)
	}

	setupLogs()

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	signals(cancel)

	if err := run(ctx); err != nil {
		log.Printf("[ERROR] failed: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log.Printf("[INFO] starting shade server on %s, site dir %s", opts.Server.Address, opts.Site.Dir)
	if opts.Admin.PasswordHash != "" {
		log.Printf("[INFO] admin API enabled")
	}

	// initialize preference storage
	prefStore, err := store.New(opts.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer prefStore.Close()

	// initialize static site access
	siteSvc, err := site.New(opts.Site.Dir, opts.Site.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to initialize site: %w", err)
	}
	defer siteSvc.Close()

	if opts.Site.Check {
		if err := siteSvc.Check(); err != nil {
			return fmt.Errorf("site check failed: %w", err)
		}
	}

	// keep the page cache in sync with generator rebuilds
	if !opts.Site.NoWatch {
		go func() {
			if watchErr := siteSvc.Watch(ctx); watchErr != nil {
				log.Printf("[WARN] site watcher failed: %v", watchErr)
			}
		}()
	}

	// initialize and start HTTP server
	srv, err := server.New(prefStore, siteSvc, server.Config{
		Address:           opts.Server.Address,
		ReadTimeout:       opts.Server.ReadTimeout,
		Version:           revision,
		BaseURL:           opts.Server.BaseURL,
		AdminPasswordHash: opts.Admin.PasswordHash,
		LoginTTL:          opts.Admin.LoginTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func setupLogs() io.Writer {
	log.Setup(log.Msec)
	if opts.Debug {
		log.Setup(log.Debug, log.CallerFunc, log.CallerPkg, log.CallerFile)
	}
	return os.Stdout
}

func signals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for sig := range sigChan {
			switch sig {
			case syscall.SIGQUIT:
				length := runtime.Stack(stacktrace, true)
				fmt.Println(string(stacktrace[:length]))
			case syscall.SIGTERM, syscall.SIGINT:
				cancel()
			}
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
}
