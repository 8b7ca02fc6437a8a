package main

import (
	"flag"
	"fmt"

	"github.com/spf13/viper"

	"github.com/nxp-imx/go-asrc"
	"github.com/nxp-imx/go-asrc/driver"
)

// Configuration keys
const (
	keyRate     = "rate"
	keyDevice   = "device"
	keyPeriod   = "period"
	keyBuffers  = "buffers"
	keyDryRun   = "dryrun"
	keyWarmup   = "warmup"
	keyLogLevel = "loglevel"
	keyLogFile  = "logfile"
	keyVerbose  = "verbose"
)

// CLI defaults
const (
	defaultPeriodFrames = 1024
	defaultLogLevel     = "warn"
)

// options is the resolved command configuration.
type options struct {
	rate     int
	device   string
	period   int
	buffers  int
	dryRun   bool
	warmup   int
	logLevel string
	logFile  string
	verbose  bool
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault(keyRate, asrc.RateDAT)
	v.SetDefault(keyDevice, driver.DefaultPath)
	v.SetDefault(keyPeriod, defaultPeriodFrames)
	v.SetDefault(keyBuffers, asrc.DefaultBufferCount)
	v.SetDefault(keyDryRun, false)
	v.SetDefault(keyWarmup, 0)
	v.SetDefault(keyLogLevel, defaultLogLevel)
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyVerbose, false)
}

// loadConfig layers defaults, the optional config file and the flags the
// user set explicitly, in increasing priority.
func loadConfig(configFile string, fs *flag.FlagSet) (options, error) {
	v := viper.New()
	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return options{}, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})

	o := options{
		rate:     v.GetInt(keyRate),
		device:   v.GetString(keyDevice),
		period:   v.GetInt(keyPeriod),
		buffers:  v.GetInt(keyBuffers),
		dryRun:   v.GetBool(keyDryRun),
		warmup:   v.GetInt(keyWarmup),
		logLevel: v.GetString(keyLogLevel),
		logFile:  v.GetString(keyLogFile),
		verbose:  v.GetBool(keyVerbose),
	}
	return o, o.validate()
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"rate":     keyRate,
	"device":   keyDevice,
	"period":   keyPeriod,
	"buffers":  keyBuffers,
	"dry-run":  keyDryRun,
	"warmup":   keyWarmup,
	"loglevel": keyLogLevel,
	"logfile":  keyLogFile,
	"v":        keyVerbose,
}

func (o options) validate() error {
	switch {
	case o.rate <= 0:
		return fmt.Errorf("target rate must be positive, got %d", o.rate)
	case o.period <= 0:
		return fmt.Errorf("period must be positive, got %d", o.period)
	case o.buffers <= 0:
		return fmt.Errorf("buffer count must be positive, got %d", o.buffers)
	case o.warmup < 0:
		return fmt.Errorf("warmup must not be negative, got %d", o.warmup)
	}
	return nil
}
