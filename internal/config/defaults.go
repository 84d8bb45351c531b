package config

const (
	defaultConfigPath          = "~/.config/velociplayer/config.toml"
	defaultProjectConfig       = "velociplayer.toml"
	defaultLogDir              = "~/.local/share/velociplayer/logs"
	defaultLibraryPath         = "~/.local/share/velociplayer/library.db"
	defaultLockPath            = "~/.local/share/velociplayer/velociplayer.lock"
	defaultAPIBind             = "127.0.0.1:7491"
	defaultOrdering            = "id"
	defaultCharset             = "utf-8"
	defaultTickIntervalMS      = 100
	defaultSeekIntervalSeconds = 10
	defaultTimescale           = 10000
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"

	envAPIBind  = "VELOCIPLAYER_API_BIND"
	envAPIToken = "VELOCIPLAYER_API_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:      defaultLogDir,
			LibraryPath: defaultLibraryPath,
			LockPath:    defaultLockPath,
			APIBind:     defaultAPIBind,
		},
		Captions: Captions{
			Ordering: defaultOrdering,
			Charset:  defaultCharset,
		},
		Playback: Playback{
			TickIntervalMS:      defaultTickIntervalMS,
			SeekIntervalSeconds: defaultSeekIntervalSeconds,
			Timescale:           defaultTimescale,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
