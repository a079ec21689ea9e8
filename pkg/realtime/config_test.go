package realtime

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := SubscriptionConfig{Topic: "orders"}.withDefaults()

	if cfg.Schema != DefaultSchema {
		t.Errorf("Schema = %q, want %q", cfg.Schema, DefaultSchema)
	}
	if cfg.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v, want %v", cfg.Debounce, DefaultDebounce)
	}
	if cfg.Event != EventAll {
		t.Errorf("Event = %v, want EventAll", cfg.Event)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (SubscriptionConfig{}).Validate(); !errors.Is(err, ErrTopicRequired) {
		t.Errorf("empty config: err = %v, want ErrTopicRequired", err)
	}

	bad := SubscriptionConfig{Topic: "orders", Debounce: -time.Second}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDebounce) {
		t.Errorf("negative debounce: err = %v, want ErrInvalidDebounce", err)
	}

	good := SubscriptionConfig{Topic: "orders"}.withDefaults()
	if err := good.Validate(); err != nil {
		t.Errorf("valid config: err = %v, want nil", err)
	}
}

func TestSameStreamIgnoresCallbacks(t *testing.T) {
	a := SubscriptionConfig{
		Topic:            "orders",
		Table:            "orders",
		Filter:           "store_id=eq.42",
		InvalidationKeys: []string{"orders"},
		OnInvalidate:     func([]string) {},
	}.withDefaults()
	b := a
	b.OnInvalidate = func([]string) {}
	b.OnPayload = func(Payload) {}

	if !a.sameStream(b) {
		t.Error("configs differing only in callbacks must compare equal")
	}

	c := a
	c.Filter = "store_id=eq.7"
	if a.sameStream(c) {
		t.Error("changed filter must compare unequal")
	}

	d := a
	d.InvalidationKeys = []string{"orders", "order-stats"}
	if a.sameStream(d) {
		t.Error("changed invalidation keys must compare unequal")
	}
}

func TestParseChangeEvent(t *testing.T) {
	cases := map[string]ChangeEvent{
		"*":      EventAll,
		"all":    EventAll,
		"":       EventAll,
		"insert": EventInsert,
		"INSERT": EventInsert,
		"Update": EventUpdate,
		"delete": EventDelete,
	}
	for in, want := range cases {
		got, err := ParseChangeEvent(in)
		if err != nil {
			t.Errorf("ParseChangeEvent(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseChangeEvent(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseChangeEvent("upsert"); err == nil {
		t.Error("ParseChangeEvent(upsert): expected error")
	}
}

func TestLoadSubscriptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscriptions.yaml")
	content := `version: "1.0"
subscriptions:
  - topic: orders
    table: orders
    event: insert
    filter: store_id=eq.42
    invalidation_keys: [orders, order-stats]
    debounce: 500ms
  - topic: reservations
    table: reservations
    disabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	configs, err := LoadSubscriptions(path)
	if err != nil {
		t.Fatalf("LoadSubscriptions: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("got %d configs, want 2", len(configs))
	}

	orders := configs[0]
	if orders.Topic != "orders" || orders.Event != EventInsert {
		t.Errorf("orders config = %+v", orders)
	}
	if orders.Debounce != 500*time.Millisecond {
		t.Errorf("orders.Debounce = %v, want 500ms", orders.Debounce)
	}
	if orders.Schema != DefaultSchema {
		t.Errorf("orders.Schema = %q, want default applied", orders.Schema)
	}
	if len(orders.InvalidationKeys) != 2 {
		t.Errorf("orders.InvalidationKeys = %v", orders.InvalidationKeys)
	}

	if !configs[1].Disabled {
		t.Error("reservations config should be disabled")
	}
}

func TestLoadSubscriptionsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscriptions.yaml")
	content := "subscriptions:\n  - table: orders\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSubscriptions(path); !errors.Is(err, ErrTopicRequired) {
		t.Errorf("err = %v, want ErrTopicRequired", err)
	}
}

func TestLoadSubscriptionsVersionCheck(t *testing.T) {
	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "subscriptions.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	// A newer minor of the same major is accepted.
	ok := write(t, "version: \"1.9\"\nsubscriptions:\n  - topic: orders\n")
	if _, err := LoadSubscriptions(ok); err != nil {
		t.Errorf("compatible version rejected: %v", err)
	}

	// A different major is not.
	major := write(t, "version: \"2.0\"\nsubscriptions:\n  - topic: orders\n")
	if _, err := LoadSubscriptions(major); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}

	// Malformed versions are rejected outright.
	bad := write(t, "version: \"one\"\nsubscriptions:\n  - topic: orders\n")
	if _, err := LoadSubscriptions(bad); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestLoadSubscriptionsMissingFile(t *testing.T) {
	if _, err := LoadSubscriptions(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
