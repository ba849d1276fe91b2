package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/base"
	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/globalconfig"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/schema"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/charmbracelet/log"
)

// env is everything a subcommand needs, opened from the config.
type env struct {
	cfg      *config.Config
	opt      Options
	logger   *log.Logger
	logFile  io.Closer
	schema   *schema.Schema
	base     *base.Base
	settings *globalconfig.Store
}

// openEnv wires config, logging, schema, storage, base and settings. The
// interactive view owns the terminal, so it logs to the log file.
func openEnv(cfg *config.Config, opt Options, interactive bool) (*env, error) {
	e := &env{cfg: cfg, opt: opt}
	logOpts := logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Prefix: "tada"}
	if interactive {
		logger, f, err := logging.NewFile(cfg.LogFile, logOpts)
		if err != nil {
			return nil, err
		}
		e.logger, e.logFile = logger, f
	} else {
		e.logger = logging.New(opt.Stderr, logOpts)
	}

	ok := false
	defer func() {
		if !ok {
			e.close()
		}
	}()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	sch, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	e.schema = sch

	role, err := e.role()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg.Store, cfg.DataDir, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	b, err := base.Open(ctx, sch, backend, base.Permissions{Role: role}, e.logger)
	if err != nil {
		backend.Close()
		return nil, err
	}
	e.base = b

	settings, err := globalconfig.Open(cfg.GlobalConfigPath())
	if err != nil {
		return nil, err
	}
	e.settings = settings

	e.logger.Debug("opened base", "store", cfg.Store, "schema", cfg.SchemaFile, "role", role)
	ok = true
	return e, nil
}

// role comes from the logged-in token, else from the config.
func (e *env) role() (base.Role, error) {
	ti, err := auth.GetToken()
	if err != nil {
		e.logger.Warn("reading credentials", "err", err)
	}
	value := e.cfg.Role
	switch {
	case ti == nil:
	case ti.Expired(time.Now()):
		e.logger.Warn("token expired, using configured role", "expired", ti.ExpiresAt)
	default:
		if r := ti.EffectiveRole(); r != "" {
			value = r
		}
	}
	return base.ParseRole(value)
}

// close waits for mutations still in flight, then releases everything.
func (e *env) close() {
	if e.base != nil {
		e.base.Wait()
		if err := e.base.Close(); err != nil {
			e.logger.Error("close base", "err", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// outcomes is the record source handed to the view by one-shot commands.
// It keeps the result of every dispatched mutation so the command can
// report it before exiting.
type outcomes struct {
	*base.Base
	results []<-chan error
}

func (o *outcomes) CreateRecordAsync(tableID string, fields model.Fields) <-chan error {
	return o.keep(o.Base.CreateRecordAsync(tableID, fields))
}

func (o *outcomes) UpdateRecordAsync(tableID string, rec model.Record, fields model.Fields) <-chan error {
	return o.keep(o.Base.UpdateRecordAsync(tableID, rec, fields))
}

func (o *outcomes) DeleteRecordAsync(tableID string, rec model.Record) <-chan error {
	return o.keep(o.Base.DeleteRecordAsync(tableID, rec))
}

func (o *outcomes) keep(ch <-chan error) <-chan error {
	o.results = append(o.results, ch)
	return ch
}

func (o *outcomes) wait() error {
	var errs []error
	for _, ch := range o.results {
		if err := <-ch; err != nil {
			errs = append(errs, err)
		}
	}
	o.results = nil
	return errors.Join(errs...)
}

// newApp opens the to-do view for a one-shot command.
func (e *env) newApp(expander todo.Expander) (*todo.App, *outcomes, error) {
	src := &outcomes{Base: e.base}
	app := todo.New(e.settings, e.schema, src, expander, e.logger)
	if err := app.Refresh(); err != nil {
		return nil, nil, err
	}
	return app, src, nil
}
