package cmd

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "pyforce"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	sourceFlagName  = "source"
	harvestFlagName = "harvest"
	outputFlagName  = "output"

	runParallelFlagName  = "parallel"
	scanTimeoutFlagName  = "scan-timeout"
	scanToolFlagName     = "tool"
	suffixFilterFlagName = "suffix-filter"
	ignoreFlagName       = "ignore-suffix"

	runParallelConfigKey  = "run.parallel"
	scanTimeoutConfigKey  = "run.scan_timeout"
	scanToolConfigKey     = "scan.tool"
	scanArgsConfigKey     = "scan.args"
	suffixFilterConfigKey = "paths.suffix_filter"
	ignoreConfigKey       = "paths.ignore"

	defaultSourceDir    = "packages"
	defaultHarvestDir   = "harvest"
	defaultReportsDir   = "reports"
	defaultRunParallel  = 1
	defaultScanTimeout  = 5 * time.Minute
	defaultSuffixFilter = ".py"

	envPrefix = "PYFORCE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".pyforce.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(sourceFlagName, defaultSourceDir)
	viper.SetDefault(harvestFlagName, defaultHarvestDir)
	viper.SetDefault(outputFlagName, defaultReportsDir)
	viper.SetDefault(runParallelConfigKey, defaultRunParallel)
	viper.SetDefault(scanTimeoutConfigKey, int64(defaultScanTimeout.Seconds()))
	viper.SetDefault(scanToolConfigKey, "")
	viper.SetDefault(scanArgsConfigKey, []string{})
	viper.SetDefault(suffixFilterConfigKey, defaultSuffixFilter)
	viper.SetDefault(ignoreConfigKey, []string{".txt"})

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}

		return
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}

// scanTimeout returns the configured scan timeout as a duration.
func scanTimeout() time.Duration {
	seconds := viper.GetInt64(scanTimeoutConfigKey)
	if seconds <= 0 {
		return defaultScanTimeout
	}

	return time.Duration(seconds) * time.Second
}
