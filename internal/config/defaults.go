package config

const (
	defaultDataDir            = "~/.local/share/marquee"
	defaultLogDir             = "~/.local/share/marquee/logs"
	defaultAPIBind            = "127.0.0.1:7788"
	defaultOMDbBaseURL        = "https://www.omdbapi.com"
	defaultOMDbTimeoutSeconds = 10
	defaultRetryLimit         = 2
	defaultRetryDelayMS       = 500
	defaultItemDelayMS        = 200
	defaultMaxStorageFailures = 3
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		OMDb: OMDb{
			BaseURL:        defaultOMDbBaseURL,
			TimeoutSeconds: defaultOMDbTimeoutSeconds,
		},
		Batch: Batch{
			RetryLimit:         defaultRetryLimit,
			RetryDelayMS:       defaultRetryDelayMS,
			ItemDelayMS:        defaultItemDelayMS,
			MaxStorageFailures: defaultMaxStorageFailures,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
