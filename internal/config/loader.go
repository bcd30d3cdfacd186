package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the board.
type Config struct {
	SQLiteDSN      string
	CalendarPath   string
	CompatEndpoint string
	CompatTimeout  time.Duration
	BaseWidth      float64
	DefaultZoom    float64
}

// Load parses configuration values from the current process environment.
//
// Every field has a usable default; set values are validated and all
// invalid entries are reported together so a broken environment surfaces
// in one pass.
func Load() (Config, error) {
	cfg := Config{
		SQLiteDSN:     "file:board.db?_foreign_keys=on",
		CompatTimeout: 3 * time.Second,
		BaseWidth:     4.0,
		DefaultZoom:   1.0,
	}

	invalid := make([]string, 0, 2)

	if dsn := strings.TrimSpace(os.Getenv("BOARD_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if path := strings.TrimSpace(os.Getenv("BOARD_CALENDAR_FILE")); path != "" {
		cfg.CalendarPath = path
	}

	// An empty endpoint disables the mold compatibility lookup entirely;
	// the board then treats every placement as compatible.
	if endpoint := strings.TrimSpace(os.Getenv("BOARD_COMPAT_ENDPOINT")); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			invalid = append(invalid, "BOARD_COMPAT_ENDPOINT")
		} else {
			cfg.CompatEndpoint = endpoint
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("BOARD_COMPAT_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOARD_COMPAT_TIMEOUT")
		} else {
			cfg.CompatTimeout = timeout
		}
	}

	if widthValue := strings.TrimSpace(os.Getenv("BOARD_BASE_WIDTH")); widthValue != "" {
		width, err := strconv.ParseFloat(widthValue, 64)
		if err != nil || width <= 0 {
			invalid = append(invalid, "BOARD_BASE_WIDTH")
		} else {
			cfg.BaseWidth = width
		}
	}

	if zoomValue := strings.TrimSpace(os.Getenv("BOARD_DEFAULT_ZOOM")); zoomValue != "" {
		zoom, err := strconv.ParseFloat(zoomValue, 64)
		if err != nil || zoom <= 0 {
			invalid = append(invalid, "BOARD_DEFAULT_ZOOM")
		} else {
			cfg.DefaultZoom = zoom
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
