package config

import (
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vanroute/tripedit/internal/errors"
)

// DefaultMaxBackups rotated backup files kept per document
const DefaultMaxBackups = 10

// Config holds all tripedit application settings
type Config struct {
	// Document configuration
	FilePath   string
	MaxBackups int

	// Command verb and its positional arguments, e.g. "show" + trip id
	Command string
	Args    []string

	// Trip field flags consumed by new/set
	TripID        string
	TripDate      string
	TripDirection string
	TripTitle     string
	TripCapacity  int
	TripStops     string
	Template      string
	Extended      bool

	// Booking field flags consumed by add-booking/update-booking
	BookingName  string
	BookingFrom  string
	BookingTo    string
	BookingIndex int

	// Publish configuration
	CommitMessage string
	Force         bool
	CheckSSH      bool

	// User experience
	Verbose        bool
	NonInteractive bool // Skips interactive prompts

	// Debugging
	Debug   bool
	LogFile string

	// Special flags
	Version bool

	// Build metadata
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new Config with default values
func New() *Config {
	return &Config{
		MaxBackups:   DefaultMaxBackups,
		Verbose:      true,
		BookingIndex: -1,

		// Default version info, will be overridden if provided
		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromEnvironment updates config from environment variables
func (c *Config) LoadFromEnvironment() {
	c.FilePath = getEnvString("TRIPS_FILE", c.FilePath)
	c.MaxBackups = getEnvInt("MAX_BACKUPS", c.MaxBackups)
	c.CommitMessage = getEnvString("COMMIT_MESSAGE", c.CommitMessage)
	c.Verbose = getEnvBool("VERBOSE", c.Verbose)
	c.NonInteractive = getEnvBool("NON_INTERACTIVE", c.NonInteractive)
	c.Debug = getEnvBool("DEBUG", c.Debug)
	c.LogFile = getEnvString("LOG_FILE", c.LogFile)
}

// SetupFlags sets up command-line flags to override config values
func (c *Config) SetupFlags(fs *flag.FlagSet) {
	// Save original value for the inverted flag (for CLI ergonomics)
	origVerbose := c.Verbose

	fs.StringVar(&c.FilePath, "file", c.FilePath, "Path to trips.json (default: last opened document)")
	fs.IntVar(&c.MaxBackups, "max-backups", c.MaxBackups, "Rotated backups kept per document")

	fs.StringVar(&c.TripID, "id", c.TripID, "Trip id (new/set; generated from date and route when omitted)")
	fs.StringVar(&c.TripDate, "date", c.TripDate, "Trip date, YYYY-MM-DD (lenient: 2026-2-3 is padded)")
	fs.StringVar(&c.TripDirection, "direction", c.TripDirection, `Trip direction: "ida" or "volta"`)
	fs.StringVar(&c.TripTitle, "title", c.TripTitle, "Trip title")
	fs.IntVar(&c.TripCapacity, "capacity", c.TripCapacity, "Seats on the trip (1-10)")
	fs.StringVar(&c.TripStops, "stops", c.TripStops, `Ordered stops separated by ";" (e.g. "Paulo Afonso-BA;Floresta-PE")`)
	fs.StringVar(&c.Template, "template", c.Template, `Start a new trip from the standard route: "ida" or "volta"`)
	fs.BoolVar(&c.Extended, "extended", c.Extended, "Include the optional cities in the template route")

	fs.StringVar(&c.BookingName, "name", c.BookingName, "Passenger name (add-booking/update-booking)")
	fs.StringVar(&c.BookingFrom, "from", c.BookingFrom, "Booking origin stop")
	fs.StringVar(&c.BookingTo, "to", c.BookingTo, "Booking destination stop")
	fs.IntVar(&c.BookingIndex, "booking", c.BookingIndex, "Booking position on the trip, 0-based (update-booking/remove-booking)")

	fs.StringVar(&c.CommitMessage, "m", c.CommitMessage, "Commit message for publish (default: timestamped)")
	fs.BoolVar(&c.Force, "force", c.Force, "Overwrite the remote with push --force when the push is rejected")
	fs.BoolVar(&c.CheckSSH, "check-ssh", c.CheckSSH, "Only run the GitHub SSH diagnostic during publish")

	fs.BoolVar(&c.Verbose, "quiet", !origVerbose, "Hide informational messages")
	fs.BoolVar(&c.NonInteractive, "non-interactive", c.NonInteractive, "Skip all interactive prompts")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to log file (default: ~/.local/share/tripedit/logs/tripedit-{doc-hash}.log)")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
}

// ParseFlags parses the command-line arguments and updates the config.
// The command verb comes first ("tripedit show -file trips.json 2026-02-03_ida_...");
// flags may appear before the verb as well, but then stop at it.
func (c *Config) ParseFlags() error {
	return c.ParseArguments(os.Args[1:])
}

// ParseArguments parses the given argument list (everything after the
// program name) and updates the config.
func (c *Config) ParseArguments(args []string) error {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		c.Command = args[0]
		args = args[1:]
	}

	fs := flag.NewFlagSet("tripedit", flag.ContinueOnError)
	c.SetupFlags(fs)

	if err := fs.Parse(args); err != nil {
		return errors.NewConfigError("flags", nil, errors.Wrap(errors.ErrInvalidConfiguration,
			fmt.Sprintf("failed to parse command-line arguments: %v", err)))
	}

	// Invert the boolean flag here, after parsing (for CLI ergonomics):
	// -quiet means Verbose=false
	c.Verbose = !c.Verbose

	c.Args = fs.Args()
	if c.Command == "" && len(c.Args) > 0 {
		c.Command = c.Args[0]
		c.Args = c.Args[1:]
	}

	return nil
}

// Finalize validates and finalizes the configuration
func (c *Config) Finalize() error {
	if c.MaxBackups < 1 {
		err := fmt.Errorf("invalid max-backups: %d (must be at least 1)", c.MaxBackups)
		return errors.NewConfigError("max-backups", c.MaxBackups, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if c.Template != "" && c.Template != "ida" && c.Template != "volta" {
		err := fmt.Errorf("invalid template: %q (must be \"ida\" or \"volta\")", c.Template)
		return errors.NewConfigError("template", c.Template, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
	}

	if c.FilePath != "" {
		absPath, err := filepath.Abs(c.FilePath)
		if err != nil {
			return errors.NewConfigError("file", c.FilePath, errors.Wrap(errors.ErrInvalidConfiguration,
				fmt.Sprintf("failed to resolve absolute path: %v", err)))
		}
		c.FilePath = absPath
	}

	if c.LogFile == "" {
		// Follow XDG Base Directory Specification
		logDir := os.Getenv("XDG_DATA_HOME")
		if logDir == "" {
			// Default XDG data home if not set
			homeDir, err := os.UserHomeDir()
			if err == nil {
				logDir = filepath.Join(homeDir, ".local", "share")
			} else {
				// Fallback to the temp directory if home dir can't be determined
				logDir = os.TempDir()
			}
		}

		// Create a unique identifier for the document
		docHash := fmt.Sprintf("%x", sha256OfString(c.FilePath)[:8])

		// Final log directory and file
		tripeditLogDir := filepath.Join(logDir, "tripedit", "logs")
		c.LogFile = filepath.Join(tripeditLogDir, fmt.Sprintf("tripedit-%s.log", docHash))
	}

	return nil
}

// getEnvString returns an environment variable string or a default value
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		valueLower := strings.ToLower(valueStr)
		if valueLower == "true" || valueLower == "1" || valueLower == "yes" {
			return true
		}
		if valueLower == "false" || valueLower == "0" || valueLower == "no" {
			return false
		}
		// For any other value, fall back to default
	}
	return defaultValue
}

// sha256OfString returns the SHA256 hash of a string
func sha256OfString(input string) []byte {
	hash := sha256.Sum256([]byte(input))
	return hash[:]
}
