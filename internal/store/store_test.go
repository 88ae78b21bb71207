package store

import (
	"github.com/sells-group/summary-analyzer/internal/config"
)

func testStoreConfig(path string) config.StoreConfig {
	return config.StoreConfig{Driver: "sqlite", DatabaseURL: path}
}
