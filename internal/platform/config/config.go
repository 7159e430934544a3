package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firebase  FirebaseConfig
	Firestore FirestoreConfig
	Storage   StorageConfig
	PubSub    PubSubConfig
	Features  FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings used for identity verification.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// StorageConfig lists the bucket used for product image uploads.
type StorageConfig struct {
	ImagesBucket  string
	PublicBaseURL string
}

// PubSubConfig names the topics order and stock events are published to.
type PubSubConfig struct {
	ProjectID       string
	OrderEventTopic string
	StockEventTopic string
}

// FeatureFlags toggle optional behaviour without redeploying.
type FeatureFlags struct {
	GuestCheckout bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the env file consulted before process environment.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies environment values directly, bypassing file and process env.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
		o.useSystemEnv = false
	}
}

// Load reads configuration from the env file and process environment,
// applying defaults and validating required fields.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	values := map[string]string{}
	if options.envMap != nil {
		for k, v := range options.envMap {
			values[k] = strings.TrimSpace(v)
		}
	} else {
		fileValues, err := readEnvFile(options.envFile)
		if err != nil {
			return Config{}, err
		}
		for k, v := range fileValues {
			values[k] = v
		}
		if options.useSystemEnv {
			for _, entry := range os.Environ() {
				parts := strings.SplitN(entry, "=", 2)
				if len(parts) != 2 {
					continue
				}
				if strings.HasPrefix(parts[0], "API_") {
					values[parts[0]] = strings.TrimSpace(parts[1])
				}
			}
		}
	}

	lookup := func(key string) string { return strings.TrimSpace(values[key]) }

	cfg := Config{
		Server: ServerConfig{
			Port:         withDefault(lookup("API_SERVER_PORT"), defaultPort),
			ReadTimeout:  durationOrDefault(lookup("API_SERVER_READ_TIMEOUT"), defaultReadTimeout),
			WriteTimeout: durationOrDefault(lookup("API_SERVER_WRITE_TIMEOUT"), defaultWriteTimeout),
			IdleTimeout:  durationOrDefault(lookup("API_SERVER_IDLE_TIMEOUT"), defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       lookup("API_FIREBASE_PROJECT_ID"),
			CredentialsFile: lookup("API_FIREBASE_CREDENTIALS_FILE"),
		},
		Firestore: FirestoreConfig{
			ProjectID:    withDefault(lookup("API_FIRESTORE_PROJECT_ID"), lookup("API_FIREBASE_PROJECT_ID")),
			EmulatorHost: lookup("API_FIRESTORE_EMULATOR_HOST"),
		},
		Storage: StorageConfig{
			ImagesBucket:  lookup("API_STORAGE_IMAGES_BUCKET"),
			PublicBaseURL: lookup("API_STORAGE_PUBLIC_BASE_URL"),
		},
		PubSub: PubSubConfig{
			ProjectID:       withDefault(lookup("API_PUBSUB_PROJECT_ID"), lookup("API_FIRESTORE_PROJECT_ID")),
			OrderEventTopic: lookup("API_PUBSUB_ORDER_EVENT_TOPIC"),
			StockEventTopic: lookup("API_PUBSUB_STOCK_EVENT_TOPIC"),
		},
		Features: FeatureFlags{
			GuestCheckout: boolValue(lookup("API_FEATURES_GUEST_CHECKOUT")),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	var missing []string
	if strings.TrimSpace(cfg.Firestore.ProjectID) == "" {
		missing = append(missing, "Firestore.ProjectID")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ValidationError{fields: missing}
}

func readEnvFile(path string) (map[string]string, error) {
	values := map[string]string{}
	if strings.TrimSpace(path) == "" {
		return values, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("config: open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		if key != "" {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}
	return values, nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func durationOrDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func boolValue(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
