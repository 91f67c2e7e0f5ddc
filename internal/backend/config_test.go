package backend

import (
	"testing"

	"mydash/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	t.Run("maps backend fields", func(t *testing.T) {
		appCfg := &config.Config{
			DataBackend:  "mongo",
			SQLiteDBPath: "./data/test.db",
			MongoURI:     "mongodb://localhost:27017",
			MongoDB:      "mydash",
		}

		bcfg, err := FromAppConfig(appCfg)
		if err != nil {
			t.Fatalf("FromAppConfig() error = %v", err)
		}
		if bcfg.Type != MongoBackend {
			t.Errorf("Type = %v, want %v", bcfg.Type, MongoBackend)
		}
		if bcfg.MongoURI != appCfg.MongoURI || bcfg.MongoDB != appCfg.MongoDB {
			t.Errorf("mongo fields = %q/%q, want %q/%q",
				bcfg.MongoURI, bcfg.MongoDB, appCfg.MongoURI, appCfg.MongoDB)
		}
		if bcfg.SQLiteDBPath != appCfg.SQLiteDBPath {
			t.Errorf("SQLiteDBPath = %q, want %q", bcfg.SQLiteDBPath, appCfg.SQLiteDBPath)
		}
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		_, err := FromAppConfig(&config.Config{DataBackend: "cassandra"})
		if err == nil {
			t.Fatal("FromAppConfig() expected error for unknown backend")
		}
	})

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := FromAppConfig(nil)
		if err == nil {
			t.Fatal("FromAppConfig() expected error for nil config")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"sqlite needs path", Config{Type: SQLiteBackend}, true},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "./data/x.db"}, false},
		{"mongo needs uri", Config{Type: MongoBackend, MongoDB: "mydash"}, true},
		{"mongo needs db", Config{Type: MongoBackend, MongoURI: "mongodb://localhost"}, true},
		{"mongo complete", Config{Type: MongoBackend, MongoURI: "mongodb://localhost", MongoDB: "mydash"}, false},
		{"invalid type", Config{Type: "cassandra"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
