// Package config provides configuration loading and defaults for xpeak.
package config

import "time"

// DefaultConfigDir is the default location for xpeak configuration.
const DefaultConfigDir = "~/.config/xpeak"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "xpeak.db"

// DefaultUserID is the profile used when none is configured.
const DefaultUserID = "local"

// DefaultSweepInterval is how often serve mode runs the habit sweep.
const DefaultSweepInterval = 15 * time.Minute

// EnvPrefix namespaces environment overrides, e.g. XPEAK_AI_API_KEY.
const EnvPrefix = "XPEAK"

var DefaultAI = AI{
	Model:             "gemini-2.5-flash",
	RequestsPerMinute: 10,
}

var DefaultServer = Server{
	Addr: "127.0.0.1:8080",
}

// DefaultLogLevel keeps one-shot commands quiet. --verbose forces debug.
const DefaultLogLevel = "warn"
