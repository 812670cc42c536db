package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"jasypt-go/internal/config"
	"jasypt-go/internal/database"
	"jasypt-go/internal/encryption"
	"jasypt-go/internal/jasypt"
	"jasypt-go/internal/properties"
	"jasypt-go/internal/resource"
)

// JasyptApp is the application layer between the CLI and the jasypt packages.
// It builds the configured property sources, resolves the encryptor settings
// from them and creates the encryptor on first use.
type JasyptApp struct {
	cfg      *config.Config
	prefix   string
	sources  properties.Chain
	detector properties.Detector
	db       *database.SQLiteDatabase
	loader   jasypt.ResourceLoader
	logger   jasypt.Logger
	op       *Operation
	logFile  *os.File
	now      func() time.Time

	resolved  jasypt.ResolvedConfig
	encryptor jasypt.StringEncryptor
	closed    bool
}

// Options adjusts how NewJasyptApp builds the app.
type Options struct {
	// Inline properties take precedence over every configured source.
	Inline properties.Map
	// Migrate brings the property store schema up to date instead of
	// requiring it to be current.
	Migrate bool
	// Verbose sends info and debug records to stderr as well as the log file.
	Verbose bool
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Loader replaces the resource loader built from the config.
	Loader jasypt.ResourceLoader
}

// NewJasyptApp creates a fully wired JasyptApp from the given config.
// operation identifies the CLI command being run (e.g. "Encrypt").
// The caller must call Close when done.
func NewJasyptApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*JasyptApp, error) {
	op := NewOperation(operation, time.Now())

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	sl, logFile, err := newLogger(cfg.LogDir, op.ID, stderr, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	a := &JasyptApp{
		cfg:     cfg,
		prefix:  cfg.PropertyPrefix(),
		logger:  logger,
		op:      op,
		logFile: logFile,
		now:     time.Now,
		loader:  opts.Loader,
	}

	if opts.Migrate || cfg.UsesDatabase() {
		if err := a.openDatabase(opts.Migrate); err != nil {
			a.Close()
			return nil, err
		}
	}

	configured, err := buildSources(ctx, cfg.Sources, a.db, opts.LookupEnv, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("building property sources: %w", err)
	}
	a.sources = append(properties.Chain{opts.Inline}, configured...)
	a.detector = properties.NewDetector(a.sources, a.prefix, logger)

	if a.loader == nil {
		a.loader = resource.NewLoaderFromConfig(cfg.Resources)
	}

	logger.Debug("operation started", "operation", operation, "sources", len(cfg.Sources))
	return a, nil
}

func (a *JasyptApp) openDatabase(migrate bool) error {
	db, err := database.NewDatabaseFromConfig(a.cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	a.db = db

	if migrate {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		return nil
	}
	if err := db.CheckMigrations(); err != nil {
		return fmt.Errorf("database schema out of date (run 'jasypt db migrate'): %w", err)
	}
	return nil
}

// track marks the operation failed when err is non-nil and returns err.
func (a *JasyptApp) track(err error) error {
	if err != nil {
		a.op.Fail()
	}
	return err
}

// ResolvedConfig resolves the encryptor settings from the property sources.
// The result is cached.
func (a *JasyptApp) ResolvedConfig() (jasypt.ResolvedConfig, error) {
	if a.resolved != nil {
		return a.resolved, nil
	}
	resolved, err := jasypt.NewResolver(a.logger).Resolve(a.sources, a.prefix)
	if err != nil {
		return nil, a.track(err)
	}
	a.resolved = resolved
	return resolved, nil
}

// Encryptor returns the encryptor for the resolved config, creating it on
// first use.
func (a *JasyptApp) Encryptor(ctx context.Context) (jasypt.StringEncryptor, error) {
	if a.encryptor != nil {
		return a.encryptor, nil
	}
	resolved, err := a.ResolvedConfig()
	if err != nil {
		return nil, err
	}
	enc, err := encryption.NewEncryptorFromConfig(ctx, resolved, a.loader, a.logger)
	if err != nil {
		return nil, a.track(err)
	}
	a.encryptor = enc
	return enc, nil
}

// Encrypt encrypts message. With wrap, the result is enclosed in the
// encrypted-value markers, ready to paste into a property file.
func (a *JasyptApp) Encrypt(ctx context.Context, message string, wrap bool) (string, error) {
	enc, err := a.Encryptor(ctx)
	if err != nil {
		return "", err
	}
	out, err := enc.Encrypt(message)
	if err != nil {
		return "", a.track(fmt.Errorf("encrypting: %w", err))
	}
	if wrap {
		out = a.detector.Wrap(out)
	}
	return out, nil
}

// Decrypt decrypts value, which may be bare or wrapped in the markers.
func (a *JasyptApp) Decrypt(ctx context.Context, value string) (string, error) {
	enc, err := a.Encryptor(ctx)
	if err != nil {
		return "", err
	}
	if a.detector.IsEncrypted(value) {
		value = a.detector.Unwrap(value)
	}
	out, err := enc.Decrypt(value)
	if err != nil {
		return "", a.track(fmt.Errorf("decrypting: %w", err))
	}
	return out, nil
}

// GetProperty looks key up in the property sources, decrypting it if it is
// an encrypted value. The encryptor is only built for encrypted values.
func (a *JasyptApp) GetProperty(ctx context.Context, key string) (string, bool, error) {
	view := properties.Decrypted{
		Source:    a.sources,
		Decrypter: properties.NewDecrypter(a.detector, lazyEncryptor{a: a, ctx: ctx}),
		Logger:    a.logger,
	}
	plain, ok, err := view.LookupErr(key)
	if err != nil {
		return "", false, a.track(fmt.Errorf("decrypting property %s: %w", key, err))
	}
	return plain, ok, nil
}

// lazyEncryptor defers building the app's encryptor until a value actually
// needs it.
type lazyEncryptor struct {
	a   *JasyptApp
	ctx context.Context
}

var _ jasypt.StringEncryptor = lazyEncryptor{}

func (l lazyEncryptor) Encrypt(message string) (string, error) {
	enc, err := l.a.Encryptor(l.ctx)
	if err != nil {
		return "", err
	}
	return enc.Encrypt(message)
}

func (l lazyEncryptor) Decrypt(encrypted string) (string, error) {
	enc, err := l.a.Encryptor(l.ctx)
	if err != nil {
		return "", err
	}
	return enc.Decrypt(encrypted)
}

// SetProperty stores key in the property store under application and
// profile. With encrypt, value is encrypted and wrapped in the markers first.
// It reports whether an existing value was replaced.
func (a *JasyptApp) SetProperty(ctx context.Context, application, profile, key, value string, encrypt bool) (bool, error) {
	if a.db == nil {
		return false, a.track(fmt.Errorf("no property store open"))
	}
	if encrypt {
		wrapped, err := a.Encrypt(ctx, value, true)
		if err != nil {
			return false, err
		}
		value = wrapped
	}

	application, profile = storeScope(application, profile)
	_, existed, err := a.db.GetProperty(ctx, application, profile, key)
	if err != nil {
		return false, a.track(err)
	}
	if err := a.db.SetProperty(ctx, application, profile, key, value); err != nil {
		return false, a.track(err)
	}
	a.logger.Info("stored property", "key", key, "application", application, "profile", profile, "replaced", existed, "encrypted", a.detector.IsEncrypted(value))
	return existed, nil
}

// DeleteProperty removes key from the property store. It reports whether
// the key was present.
func (a *JasyptApp) DeleteProperty(ctx context.Context, application, profile, key string) (bool, error) {
	if a.db == nil {
		return false, a.track(fmt.Errorf("no property store open"))
	}
	application, profile = storeScope(application, profile)
	deleted, err := a.db.DeleteProperty(ctx, application, profile, key)
	if err != nil {
		return false, a.track(err)
	}
	a.logger.Info("deleted property", "key", key, "application", application, "profile", profile, "found", deleted)
	return deleted, nil
}

// DecryptProperties returns every enumerable property of the sources with
// encrypted values decrypted. Decryptions run concurrently, as many at once
// as the encryptor pool has members.
func (a *JasyptApp) DecryptProperties(ctx context.Context) (properties.Map, error) {
	enc, err := a.Encryptor(ctx)
	if err != nil {
		return nil, err
	}

	limit := 1
	if p, ok := enc.(*encryption.PooledEncryptor); ok {
		limit = p.Size()
	}

	out, err := properties.NewDecrypter(a.detector, enc).DecryptAll(ctx, a.sources, limit)
	if err != nil {
		return nil, a.track(err)
	}
	a.logger.Info("decrypted properties", "count", len(out), "concurrency", limit)
	return out, nil
}

// ImportProperties loads the property file at path into the property store
// under application and profile. It returns the number of properties stored.
func (a *JasyptApp) ImportProperties(ctx context.Context, path, application, profile string) (int, error) {
	if a.db == nil {
		return 0, a.track(fmt.Errorf("no property store open"))
	}

	props, err := properties.LoadFile(path)
	if err != nil {
		return 0, a.track(err)
	}

	application, profile = storeScope(application, profile)
	n, err := a.db.ImportProperties(ctx, application, profile, props)
	if err != nil {
		return 0, a.track(err)
	}

	encrypted := 0
	for _, v := range props {
		if a.detector.IsEncrypted(v) {
			encrypted++
		}
	}
	a.logger.Info("imported properties", "path", path, "application", application, "profile", profile, "count", n, "encrypted", encrypted)
	return n, nil
}

// BackupDatabase writes a copy of the property store to destPath.
func (a *JasyptApp) BackupDatabase(destPath string) error {
	if a.db == nil {
		return a.track(fmt.Errorf("no property store open"))
	}
	if err := a.db.BackupTo(destPath); err != nil {
		return a.track(err)
	}
	a.logger.Info("backed up property store", "path", destPath)
	return nil
}

// DatabasePath returns the location of the open property store, or "" when
// none is open.
func (a *JasyptApp) DatabasePath() string {
	if a.db == nil {
		return ""
	}
	return a.db.Path()
}

// Close logs the outcome of the operation and closes all resources.
func (a *JasyptApp) Close() error {
	var firstErr error

	if a.closed {
		return nil
	}
	a.closed = true

	a.logger.Debug("operation finished", "operation", a.op.Name, "status", a.op.Status, "elapsed", a.op.Elapsed(a.now()))

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
