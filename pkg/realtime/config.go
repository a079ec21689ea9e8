package realtime

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rowstream/rowstream-go/pkg/version"
)

// Configuration errors.
var (
	ErrTopicRequired      = errors.New("subscription topic is required")
	ErrInvalidDebounce    = errors.New("debounce duration must not be negative")
	ErrUnsupportedVersion = errors.New("subscriptions file version not supported")
)

// Configuration defaults.
const (
	// DefaultSchema is the schema watched when none is configured.
	DefaultSchema = "public"

	// DefaultDebounce is the quiet period applied when none is configured.
	DefaultDebounce = 300 * time.Millisecond
)

// SubscriptionConfig describes one logical subscription. Configs are
// immutable once passed to Open: any field change means a brand-new
// subscription (the old one is torn down, a new one created).
type SubscriptionConfig struct {
	// Topic names the change-stream channel. Required; also the
	// subscription's identity within a Manager.
	Topic string `yaml:"topic"`

	// Schema of the watched table. Defaults to "public".
	Schema string `yaml:"schema,omitempty"`

	// Table being watched.
	Table string `yaml:"table,omitempty"`

	// Event filters by operation kind. Defaults to EventAll.
	Event ChangeEvent `yaml:"event,omitempty"`

	// Filter is an optional row-level filter expression.
	Filter string `yaml:"filter,omitempty"`

	// Disabled creates the subscription without connecting it. Enable
	// starts it later.
	Disabled bool `yaml:"disabled,omitempty"`

	// InvalidationKeys are signalled to OnInvalidate, debounced, whenever a
	// change arrives.
	InvalidationKeys []string `yaml:"invalidation_keys,omitempty"`

	// Debounce is the quiet period for invalidation batching. Defaults to
	// DefaultDebounce.
	Debounce time.Duration `yaml:"debounce,omitempty"`

	// OnPayload, if set, receives every raw change record before debounced
	// invalidation runs.
	OnPayload func(p Payload) `yaml:"-"`

	// OnInvalidate receives each batched set of invalidation keys.
	OnInvalidate func(keys []string) `yaml:"-"`

	// OnFailure is invoked once when the retry budget is exhausted.
	OnFailure func(topic, filter string) `yaml:"-"`
}

// withDefaults returns a copy with default values filled in.
func (c SubscriptionConfig) withDefaults() SubscriptionConfig {
	if c.Schema == "" {
		c.Schema = DefaultSchema
	}
	if c.Debounce == 0 {
		c.Debounce = DefaultDebounce
	}
	return c
}

// Validate checks the config for use with Open.
func (c SubscriptionConfig) Validate() error {
	if c.Topic == "" {
		return ErrTopicRequired
	}
	if c.Debounce < 0 {
		return ErrInvalidDebounce
	}
	return nil
}

// sameStream reports whether two configs describe the same subscription,
// ignoring callbacks. A false result on an open topic means
// teardown-then-recreate.
func (c SubscriptionConfig) sameStream(o SubscriptionConfig) bool {
	return c.Topic == o.Topic &&
		c.Schema == o.Schema &&
		c.Table == o.Table &&
		c.Event == o.Event &&
		c.Filter == o.Filter &&
		c.Disabled == o.Disabled &&
		c.Debounce == o.Debounce &&
		slices.Equal(c.InvalidationKeys, o.InvalidationKeys)
}

// yamlDuration decodes Go duration strings ("300ms", "2s") from YAML
// scalars. Plain yaml.v3 would try to read them as integers.
type yamlDuration time.Duration

func (d *yamlDuration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = yamlDuration(parsed)
	return nil
}

// UnmarshalYAML decodes the on-disk form of a subscription config.
func (c *SubscriptionConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Topic            string       `yaml:"topic"`
		Schema           string       `yaml:"schema"`
		Table            string       `yaml:"table"`
		Event            ChangeEvent  `yaml:"event"`
		Filter           string       `yaml:"filter"`
		Disabled         bool         `yaml:"disabled"`
		InvalidationKeys []string     `yaml:"invalidation_keys"`
		Debounce         yamlDuration `yaml:"debounce"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Topic = raw.Topic
	c.Schema = raw.Schema
	c.Table = raw.Table
	c.Event = raw.Event
	c.Filter = raw.Filter
	c.Disabled = raw.Disabled
	c.InvalidationKeys = raw.InvalidationKeys
	c.Debounce = time.Duration(raw.Debounce)
	return nil
}

// subscriptionFile is the on-disk form of a subscription set.
type subscriptionFile struct {
	// Version declares the file format version ("major.minor"). Optional;
	// when present the major version must match the library's.
	Version string `yaml:"version,omitempty"`

	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
}

// LoadSubscriptions reads a YAML file declaring a list of subscriptions,
// applies defaults, and validates each entry. A `version` field, if
// present, is checked for major-version compatibility with the library.
// Callbacks are wired by the caller before Open.
func LoadSubscriptions(path string) ([]SubscriptionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subscriptions file: %w", err)
	}

	var file subscriptionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse subscriptions file: %w", err)
	}

	if file.Version != "" {
		declared, err := version.Parse(file.Version)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, err)
		}
		current, err := version.Parse(version.Current)
		if err != nil {
			return nil, err
		}
		if !current.Compatible(declared) {
			return nil, fmt.Errorf("%w: file declares %s, library is %s",
				ErrUnsupportedVersion, declared, current)
		}
	}

	configs := make([]SubscriptionConfig, 0, len(file.Subscriptions))
	for i, cfg := range file.Subscriptions {
		cfg = cfg.withDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("subscription %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
