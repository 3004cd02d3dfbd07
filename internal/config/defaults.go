package config

const (
	defaultServerBind            = "127.0.0.1:7960"
	defaultStoreBackend          = "redis"
	defaultRedisAddr             = "127.0.0.1:6379"
	defaultSQLitePath            = "~/.local/share/anisync/store.db"
	defaultQueueKey              = "anime_slugs_queue"
	defaultCacheTTLHours         = 24
	defaultListingBaseURL        = "https://samehadaku.care"
	defaultListingTimeout        = 20
	defaultListingUserAgent      = "anisync/0.1"
	defaultCatalogBaseURL        = "https://api.jikan.moe/v4"
	defaultCatalogTimeout        = 10
	defaultCatalogRequestsPerSec = 1.0
	defaultCatalogBurst          = 3
	defaultTickIntervalSeconds   = 5
	defaultTickPauseMillis       = 300
	defaultFullSyncPauseMillis   = 500
	defaultReseedIntervalMinutes = 30
	defaultReseedPages           = 2
	defaultFullSyncPages         = 2
	defaultNtfyTimeout           = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogDir                = "~/.local/share/anisync/logs"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind: defaultServerBind,
		},
		Store: Store{
			Backend:       defaultStoreBackend,
			RedisAddr:     defaultRedisAddr,
			SQLitePath:    defaultSQLitePath,
			QueueKey:      defaultQueueKey,
			CacheTTLHours: defaultCacheTTLHours,
		},
		Listing: Listing{
			BaseURL:        defaultListingBaseURL,
			RequestTimeout: defaultListingTimeout,
			UserAgent:      defaultListingUserAgent,
		},
		Catalog: Catalog{
			BaseURL:        defaultCatalogBaseURL,
			RequestTimeout: defaultCatalogTimeout,
			RequestsPerSec: defaultCatalogRequestsPerSec,
			Burst:          defaultCatalogBurst,
		},
		Sync: Sync{
			TickIntervalSeconds:   defaultTickIntervalSeconds,
			TickPauseMillis:       defaultTickPauseMillis,
			FullSyncPauseMillis:   defaultFullSyncPauseMillis,
			ReseedIntervalMinutes: defaultReseedIntervalMinutes,
			ReseedPages:           defaultReseedPages,
			FullSyncPages:         defaultFullSyncPages,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
	}
}
