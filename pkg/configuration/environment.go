package configuration

import (
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hrtools/rolecall/pkg/logging"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files, skipping ones that do not exist, and
// reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if fs.FileExists(file) {
			existingFiles = append(existingFiles, file)
		}
	}
	if len(existingFiles) == 0 {
		return 0, nil
	}
	return len(existingFiles), godotenv.Load(existingFiles...)
}

type WorkbookOptions struct {
	// MainSheet is the sheet carrying the 3-row submission header.
	MainSheet string `env:"MAIN_SHEET_NAME" envDefault:"Role Holders"`
	// RosterSheet is the single-header-row authoritative roster sheet.
	RosterSheet string `env:"ROSTER_SHEET_NAME" envDefault:"User Data"`
	// MaxFileSize is the largest input workbook accepted, in bytes.
	MaxFileSize int64 `env:"MAX_FILE_SIZE" envDefault:"33554432"`
	// HighlightColor is the ARGB fill used to flag cells named by findings.
	HighlightColor string `env:"HIGHLIGHT_COLOR" envDefault:"FFFF00"`
}

func (w *WorkbookOptions) Validate() error {
	if strings.TrimSpace(w.MainSheet) == "" {
		return fmt.Errorf("MAIN_SHEET_NAME must not be blank")
	}
	if strings.TrimSpace(w.RosterSheet) == "" {
		return fmt.Errorf("ROSTER_SHEET_NAME must not be blank")
	}
	if w.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive, got %d", w.MaxFileSize)
	}
	if len(w.HighlightColor) != 6 && len(w.HighlightColor) != 8 {
		return fmt.Errorf("HIGHLIGHT_COLOR must be a 6 or 8 digit hex color, got %q", w.HighlightColor)
	}
	return nil
}

type Configuration struct {
	Workbook WorkbookOptions

	// SubmittedBy is stamped into the Submitted by column and output file
	// names. Defaults to the OS account name when unset.
	SubmittedBy string `env:"SUBMITTED_BY"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath     string `env:"LOG_PATH" envDefault:"./logs/rolecall.log"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.Workbook.Validate(); err != nil {
		return fmt.Errorf("workbook configuration error: %w", err)
	}
	if c.SubmittedBy == "" {
		if u, err := user.Current(); err == nil {
			c.SubmittedBy = u.Username
		} else {
			c.SubmittedBy = "unknown"
		}
	}
	if c.LogPath == "" {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
		return nil
	}
	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger
	return nil
}

func (c *Configuration) Unload() {
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}
