package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Profile selects one of the two storefront behaviour sets.
type Profile string

const (
	// ProfileBasic merges identical cart lines, collects a short address form
	// and keeps the preview camera undamped.
	ProfileBasic Profile = "basic"
	// ProfileExtended always creates a new cart line, collects the Argentina
	// shipping fields and damps the preview camera.
	ProfileExtended Profile = "extended"
)

// MergesDuplicates reports whether identical product/color/size lines merge.
func (p Profile) MergesDuplicates() bool { return p == ProfileBasic }

// ExtendedFields reports whether checkout collects DNI, phone, province and neighborhood.
func (p Profile) ExtendedFields() bool { return p != ProfileBasic }

// Damping reports whether the orbit camera eases out after a drag.
func (p Profile) Damping() bool { return p != ProfileBasic }

type Messaging struct {
	Host      string // deep-link host, e.g. api.whatsapp.com
	Phone     string // fixed recipient
	StoreName string // used in the greeting header
}

type Preview struct {
	FPS         int
	Width       int
	Height      int
	IdleTimeout time.Duration
}

type Config struct {
	Port           string
	LogFile        string
	TemplatesDir   string
	StaticDir      string
	Locale         string
	Profile        Profile
	Messaging      Messaging
	Preview        Preview
	TextureTimeout time.Duration
	SessionIdle    time.Duration // in-memory carts are dropped after this long
}

// Load reads the environment, after overlaying an optional .env file.
func Load() Config {
	envPath := getenv("ENV_FILE", ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("[warn] could not load %s: %v", envPath, err)
		}
	}

	cfg := Config{
		Port:         getenv("PORT", "8080"),
		LogFile:      getenv("LOG_FILE", ""),
		TemplatesDir: getenv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    getenv("STATIC_DIR", "./web/static"),
		Locale:       getenv("LOCALE", "es-AR"),
		Profile:      parseProfile(getenv("PROFILE", string(ProfileExtended))),
		Messaging: Messaging{
			Host:      getenv("WHATSAPP_HOST", "api.whatsapp.com"),
			Phone:     getenv("WHATSAPP_PHONE", "+541124661859"),
			StoreName: getenv("STORE_NAME", "Fatality Ramdom"),
		},
		Preview: Preview{
			FPS:         getint("PREVIEW_FPS", 60),
			Width:       getint("PREVIEW_WIDTH", 480),
			Height:      getint("PREVIEW_HEIGHT", 560),
			IdleTimeout: getduration("PREVIEW_IDLE", 2*time.Minute),
		},
		TextureTimeout: getduration("TEXTURE_TIMEOUT", 5*time.Second),
		SessionIdle:    getduration("SESSION_IDLE", 24*time.Hour),
	}
	log.Printf("[config] PORT=%s PROFILE=%s LOCALE=%s PREVIEW_FPS=%d LOG_FILE=%s",
		cfg.Port, cfg.Profile, cfg.Locale, cfg.Preview.FPS, cfg.LogFile)
	return cfg
}

// Default returns the configuration used when no environment is present.
func Default() Config {
	return Config{
		Port:         "8080",
		TemplatesDir: "./web/templates",
		StaticDir:    "./web/static",
		Locale:       "es-AR",
		Profile:      ProfileExtended,
		Messaging: Messaging{
			Host:      "api.whatsapp.com",
			Phone:     "+541124661859",
			StoreName: "Fatality Ramdom",
		},
		Preview:        Preview{FPS: 60, Width: 480, Height: 560, IdleTimeout: 2 * time.Minute},
		TextureTimeout: 5 * time.Second,
		SessionIdle:    24 * time.Hour,
	}
}

func parseProfile(s string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case ProfileBasic:
		return ProfileBasic
	default:
		return ProfileExtended
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getduration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
