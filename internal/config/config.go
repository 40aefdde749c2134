// Package config handles library discovery, paths and run options.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	MotherloadDir  = ".motherload"
	ConfigFile     = "config.yml"
	EnvFile        = ".env"
	CacheDir       = "cache"
	CacheFile      = "cache.db"
	DBFile         = "refs.db"
	CatalogDir     = "bibliotheque"
	MasterCSV      = "master_catalog.csv"
	MasterJSON     = "master_catalog.json"
	CompleteCSV    = "complete_catalog.csv"
	CompleteJSON   = "complete_catalog.json"
	ReportsDir     = "reports"
	ScanRunsDir    = "scan_runs"
	CollectionsDir = "collections"
	InboxDir       = "inbox"
)

// Environment variables that override file settings.
const (
	EnvRoot           = "ML_ROOT"
	EnvContactEmail   = "ML_CONTACT_EMAIL"
	EnvUnpaywallEmail = "UNPAYWALL_EMAIL"
	EnvS2APIKey       = "S2_API_KEY"
)

// Defaults applied to zero-valued options.
const (
	DefaultRateLimitSeconds = 0.3
	DefaultMaxWorkers       = 8
	DefaultMaxPagesText     = 2
	DefaultMaxPagesOCR      = 2
	DefaultOCRLang          = "eng"
	DefaultLogLevel         = "info"
	DefaultSemanticFields   = "title,year,authors,venue,journal,externalIds"
)

// ErrNoRepository is returned when no .motherload directory can be found.
var ErrNoRepository = errors.New("not in a motherload library (no .motherload directory found)")

// Options is the read-only option set of a run, stored in
// .motherload/config.yml.
type Options struct {
	PDFRoot              string  `yaml:"pdf_root,omitempty"`
	EnableOCR            bool    `yaml:"enable_ocr"`
	OCRLang              string  `yaml:"ocr_lang,omitempty"`
	ProviderContactEmail string  `yaml:"provider_contact_email,omitempty"`
	RateLimitSeconds     float64 `yaml:"rate_limit_seconds"`
	CachePath            string  `yaml:"cache_path,omitempty"`
	MaxPagesText         int     `yaml:"max_pages_text,omitempty"`
	MaxPagesDOI          int     `yaml:"max_pages_doi"` // 0 scans every page
	MaxPagesOCR          int     `yaml:"max_pages_ocr,omitempty"`
	MaxWorkers           int     `yaml:"max_workers,omitempty"`
	LogLevel             string  `yaml:"log_level,omitempty"`
	SemanticFields       string  `yaml:"semantic_fields,omitempty"`
	S2APIKey             string  `yaml:"s2_api_key,omitempty"`

	// LibraryRoot is where the options were loaded from; never persisted.
	LibraryRoot string `yaml:"-"`
}

// Default returns the options of a fresh library at root.
func Default(root string) *Options {
	o := &Options{LibraryRoot: root, RateLimitSeconds: DefaultRateLimitSeconds}
	o.applyDefaults()
	return o
}

func (o *Options) applyDefaults() {
	if o.OCRLang == "" {
		o.OCRLang = DefaultOCRLang
	}
	if o.MaxPagesText <= 0 {
		o.MaxPagesText = DefaultMaxPagesText
	}
	if o.MaxPagesDOI < 0 {
		o.MaxPagesDOI = 0
	}
	if o.MaxPagesOCR <= 0 {
		o.MaxPagesOCR = DefaultMaxPagesOCR
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = DefaultMaxWorkers
	}
	if o.LogLevel == "" {
		o.LogLevel = DefaultLogLevel
	}
	if o.SemanticFields == "" {
		o.SemanticFields = DefaultSemanticFields
	}
}

// ApplyEnv overrides options from the environment. The contact email comes
// from ML_CONTACT_EMAIL, falling back to UNPAYWALL_EMAIL.
func (o *Options) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvContactEmail)); v != "" {
		o.ProviderContactEmail = v
	} else if v := strings.TrimSpace(os.Getenv(EnvUnpaywallEmail)); v != "" {
		o.ProviderContactEmail = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvS2APIKey)); v != "" {
		o.S2APIKey = v
	}
}

// LoadEnv loads the library's .env file and then one in the working
// directory. Variables already set in the process win; missing files are
// ignored.
func LoadEnv(root string) error {
	for _, path := range []string{filepath.Join(root, EnvFile), EnvFile} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// LoadFile reads .motherload/config.yml with defaults applied and nothing
// else. A missing file yields defaults.
func LoadFile(root string) (*Options, error) {
	// rate_limit_seconds: 0 disables throttling, so its default is seeded
	// before decoding rather than filled in for zero values
	o := Options{RateLimitSeconds: DefaultRateLimitSeconds}
	data, err := os.ReadFile(ConfigPath(root))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}
	o.LibraryRoot = root
	o.applyDefaults()
	return &o, nil
}

// Load returns the effective options of the library at root: the config
// file, then global settings for what it leaves empty, then the
// environment.
func Load(root string) (*Options, error) {
	o, err := LoadFile(root)
	if err != nil {
		return nil, err
	}
	global, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if o.ProviderContactEmail == "" {
		o.ProviderContactEmail = global.ContactEmail
	}
	if o.S2APIKey == "" {
		o.S2APIKey = global.S2APIKey
	}
	o.ApplyEnv()
	return o, nil
}

// Save writes the options to the library at root.
func (o *Options) Save(root string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(MotherloadPath(root), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", MotherloadDir, err)
	}
	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks option ranges and the PDF root.
func (o *Options) Validate() error {
	if o.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1, got %d", o.MaxWorkers)
	}
	if o.RateLimitSeconds < 0 {
		return fmt.Errorf("rate_limit_seconds must not be negative, got %v", o.RateLimitSeconds)
	}
	if o.PDFRoot != "" {
		return ValidateDir(o.PDFRoot)
	}
	return nil
}

// ResolvedPDFRoot returns pdf_root expanded, defaulting to the library's
// collections directory.
func (o *Options) ResolvedPDFRoot() string {
	if o.PDFRoot == "" {
		return filepath.Join(o.LibraryRoot, CollectionsDir)
	}
	p := ExpandPath(o.PDFRoot)
	if !filepath.IsAbs(p) {
		p = filepath.Join(o.LibraryRoot, p)
	}
	return p
}

// ResolvedCachePath returns cache_path expanded, defaulting to the library
// cache database.
func (o *Options) ResolvedCachePath() string {
	if o.CachePath == "" {
		return CacheFilePath(o.LibraryRoot)
	}
	p := ExpandPath(o.CachePath)
	if !filepath.IsAbs(p) {
		p = filepath.Join(o.LibraryRoot, p)
	}
	return p
}

// Get returns an option by its yaml key as a string.
func (o *Options) Get(key string) (string, error) {
	switch key {
	case "pdf_root":
		return o.PDFRoot, nil
	case "enable_ocr":
		return strconv.FormatBool(o.EnableOCR), nil
	case "ocr_lang":
		return o.OCRLang, nil
	case "provider_contact_email":
		return o.ProviderContactEmail, nil
	case "rate_limit_seconds":
		return strconv.FormatFloat(o.RateLimitSeconds, 'f', -1, 64), nil
	case "cache_path":
		return o.CachePath, nil
	case "max_pages_text":
		return strconv.Itoa(o.MaxPagesText), nil
	case "max_pages_doi":
		return strconv.Itoa(o.MaxPagesDOI), nil
	case "max_pages_ocr":
		return strconv.Itoa(o.MaxPagesOCR), nil
	case "max_workers":
		return strconv.Itoa(o.MaxWorkers), nil
	case "log_level":
		return o.LogLevel, nil
	case "semantic_fields":
		return o.SemanticFields, nil
	case "s2_api_key":
		return o.S2APIKey, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set parses value into the option named key.
func (o *Options) Set(key, value string) error {
	var err error
	switch key {
	case "pdf_root":
		o.PDFRoot = value
	case "enable_ocr":
		o.EnableOCR, err = strconv.ParseBool(value)
	case "ocr_lang":
		o.OCRLang = value
	case "provider_contact_email":
		o.ProviderContactEmail = value
	case "rate_limit_seconds":
		o.RateLimitSeconds, err = strconv.ParseFloat(value, 64)
	case "cache_path":
		o.CachePath = value
	case "max_pages_text":
		o.MaxPagesText, err = strconv.Atoi(value)
	case "max_pages_doi":
		o.MaxPagesDOI, err = strconv.Atoi(value)
	case "max_pages_ocr":
		o.MaxPagesOCR, err = strconv.Atoi(value)
	case "max_workers":
		o.MaxWorkers, err = strconv.Atoi(value)
	case "log_level":
		o.LogLevel = value
	case "semantic_fields":
		o.SemanticFields = value
	case "s2_api_key":
		o.S2APIKey = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable option keys in display order.
var Keys = []string{
	"pdf_root", "enable_ocr", "ocr_lang", "provider_contact_email",
	"rate_limit_seconds", "cache_path", "max_pages_text", "max_pages_doi",
	"max_pages_ocr", "max_workers", "log_level", "semantic_fields", "s2_api_key",
}

// MotherloadPath returns the path to the .motherload directory.
func MotherloadPath(root string) string {
	return filepath.Join(root, MotherloadDir)
}

// ConfigPath returns the path to config.yml.
func ConfigPath(root string) string {
	return filepath.Join(root, MotherloadDir, ConfigFile)
}

// CachePath returns the path to the cache directory.
func CachePath(root string) string {
	return filepath.Join(root, MotherloadDir, CacheDir)
}

// CacheFilePath returns the default enrichment cache database.
func CacheFilePath(root string) string {
	return filepath.Join(root, MotherloadDir, CacheDir, CacheFile)
}

// DBPath returns the path to the catalog query mirror.
func DBPath(root string) string {
	return filepath.Join(root, MotherloadDir, CacheDir, DBFile)
}

// CatalogPath returns the catalog directory.
func CatalogPath(root string) string {
	return filepath.Join(root, CatalogDir)
}

// MasterCSVPath returns the master table path.
func MasterCSVPath(root string) string {
	return filepath.Join(root, CatalogDir, MasterCSV)
}

// MasterJSONPath returns the master table JSON export path.
func MasterJSONPath(root string) string {
	return filepath.Join(root, CatalogDir, MasterJSON)
}

// CompleteCSVPath returns the complete catalog CSV path.
func CompleteCSVPath(root string) string {
	return filepath.Join(root, CatalogDir, CompleteCSV)
}

// CompleteJSONPath returns the complete catalog JSON path.
func CompleteJSONPath(root string) string {
	return filepath.Join(root, CatalogDir, CompleteJSON)
}

// ReportsPath returns the reports directory.
func ReportsPath(root string) string {
	return filepath.Join(root, ReportsDir)
}

// ScanRunsPath returns the run summary directory.
func ScanRunsPath(root string) string {
	return filepath.Join(root, ScanRunsDir)
}

// InboxPath returns the watched inbox directory.
func InboxPath(root string) string {
	return filepath.Join(root, InboxDir)
}

// IsRepository checks if the given path contains a motherload library.
func IsRepository(root string) bool {
	info, err := os.Stat(MotherloadPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a motherload library.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoRepository
		}
		abs = parent
	}
}

// Init creates the library skeleton at root and writes default options if
// none exist yet.
func Init(root string) (*Options, error) {
	for _, dir := range []string{
		CachePath(root), CatalogPath(root), ReportsPath(root),
		ScanRunsPath(root), filepath.Join(root, CollectionsDir), InboxPath(root),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(ConfigPath(root)); err == nil {
		return Load(root)
	}
	o := Default(root)
	if err := o.Save(root); err != nil {
		return nil, err
	}
	return o, nil
}

// ValidateDir checks that the path exists and is a directory.
func ValidateDir(path string) error {
	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expandedPath)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
