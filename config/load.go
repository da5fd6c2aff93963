package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads configurations from the TOML file at path. A missing path falls
// back to defaults overridable by environment variables, which keeps local
// tooling working without a config file.
func Load(path string) (Configs, error) {
	cfg := defaultConfigs()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}

	if secret := os.Getenv("TOKEN_SECRET"); secret != "" {
		cfg.Auth.AccessToken.Secret = secret
	}

	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.Session.Secret = secret
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}

	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}

	return cfg, nil
}

func defaultConfigs() Configs {
	return Configs{
		Env: "local",
		Database: DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "georef",
			User:     "root",
		},
		ApiServer: ServerConfigs{
			Host:         "localhost",
			Port:         "8080",
			DefaultLimit: 1,
			MaxLimit:     50,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
		},
		Session: SessionConfigs{
			Name: "georef_session",
		},
		Redis: RedisConfigs{
			Addr: "localhost:6379",
		},
		Lock: LockConfigs{
			TTL: 180 * time.Second,
		},
	}
}
