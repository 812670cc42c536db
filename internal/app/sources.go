package app

import (
	"context"
	"fmt"

	"jasypt-go/internal/config"
	"jasypt-go/internal/database"
	"jasypt-go/internal/jasypt"
	"jasypt-go/internal/properties"
)

// buildSources creates one property source per entry of cfgs, in order.
// Database sources require db.
func buildSources(ctx context.Context, cfgs []config.SourceConfig, db *database.SQLiteDatabase, lookupEnv func(string) (string, bool), logger jasypt.Logger) (properties.Chain, error) {
	chain := make(properties.Chain, 0, len(cfgs))
	for i, sc := range cfgs {
		switch sc.Type {
		case "env":
			chain = append(chain, properties.Env{LookupEnv: lookupEnv})
		case "file":
			if sc.Path == "" {
				return nil, fmt.Errorf("source %d: path required for file source", i)
			}
			m, err := properties.LoadFile(sc.Path)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			logger.Debug("loaded property file", "path", sc.Path, "count", len(m))
			chain = append(chain, m)
		case "database":
			if db == nil {
				return nil, fmt.Errorf("source %d: no property store available", i)
			}
			application, profile := storeScope(sc.Application, sc.Profile)
			m, err := db.LoadProperties(ctx, application, profile)
			if err != nil {
				return nil, fmt.Errorf("source %d: %w", i, err)
			}
			logger.Debug("loaded stored properties", "application", application, "profile", profile, "count", len(m))
			chain = append(chain, m)
		default:
			return nil, fmt.Errorf("source %d: unknown source type: %s", i, sc.Type)
		}
	}
	return chain, nil
}

// storeScope fills in the default application and profile names.
func storeScope(application, profile string) (string, string) {
	if application == "" {
		application = database.DefaultApplication
	}
	if profile == "" {
		profile = database.DefaultProfile
	}
	return application, profile
}
