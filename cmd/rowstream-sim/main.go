// Command rowstream-sim is an interactive subscription lifecycle simulator.
//
// It runs a real subscription manager against an in-memory transport and
// lets you script the transport by hand: confirm joins, drop channels,
// deliver change records, or let a channel die silently and watch the
// health probe revive it.
//
// Usage:
//
//	rowstream-sim [flags]
//
// Flags:
//
//	-config string     Subscription YAML file to open on startup
//	-debounce duration Default invalidation debounce (default 300ms)
//	-health duration   Liveness probe interval (default 5s)
//	-attempts int      Reconnect attempt budget (default 5)
//	-backoff duration  Initial reconnect delay (default 1s)
//	-log string        Append diagnostic events to a CBOR log file
//	-quiet             Suppress diagnostic event output
//	-version           Print the library version and exit
//
// Examples:
//
//	# Open a subscription and kill it repeatedly
//	rowstream-sim
//	sim> open orders store_id=eq.42
//	sim> emit orders subscribed
//	sim> emit orders closed
//
//	# Replay a subscription file with a short health interval
//	rowstream-sim -config subscriptions.yaml -health 2s
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/rowstream/rowstream-go/pkg/backoff"
	"github.com/rowstream/rowstream-go/pkg/log"
	"github.com/rowstream/rowstream-go/pkg/realtime"
	"github.com/rowstream/rowstream-go/pkg/realtime/realtimetest"
	"github.com/rowstream/rowstream-go/pkg/version"
)

// Config holds the simulator configuration.
type Config struct {
	ConfigFile string
	Debounce   time.Duration
	Health     time.Duration
	Attempts   int
	Backoff    time.Duration
	LogFile    string
	Quiet      bool
	Version    bool
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "Subscription YAML file to open on startup")
	flag.DurationVar(&config.Debounce, "debounce", realtime.DefaultDebounce, "Default invalidation debounce")
	flag.DurationVar(&config.Health, "health", 5*time.Second, "Liveness probe interval")
	flag.IntVar(&config.Attempts, "attempts", 5, "Reconnect attempt budget")
	flag.DurationVar(&config.Backoff, "backoff", time.Second, "Initial reconnect delay")
	flag.StringVar(&config.LogFile, "log", "", "Append diagnostic events to a CBOR log file")
	flag.BoolVar(&config.Quiet, "quiet", false, "Suppress diagnostic event output")
	flag.BoolVar(&config.Version, "version", false, "Print the library version and exit")
}

func main() {
	flag.Parse()

	if config.Version {
		fmt.Printf("rowstream-sim %s\n", version.Current)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sim> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		stdlog.Fatalf("Failed to create readline: %v", err)
	}
	defer rl.Close()

	logger, cleanup, err := buildLogger(rl.Stdout())
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}
	defer cleanup()

	transport := realtimetest.NewStubTransport()
	manager := realtime.New(transport,
		realtime.WithLogger(logger),
		realtime.WithHealthInterval(config.Health),
		realtime.WithMaxAttempts(config.Attempts),
		realtime.WithBackoffPolicy(backoff.Policy{Initial: config.Backoff, Max: 30 * time.Second}),
	)
	defer manager.Close()

	sim := &simulator{manager: manager, transport: transport, rl: rl}

	if config.ConfigFile != "" {
		if err := sim.loadConfig(config.ConfigFile); err != nil {
			stdlog.Fatalf("Failed to load %s: %v", config.ConfigFile, err)
		}
	}

	sim.run()
}

// buildLogger assembles the diagnostic event pipeline: human-readable
// output through slog, plus an optional CBOR file sink.
func buildLogger(out io.Writer) (log.Logger, func(), error) {
	loggers := []log.Logger{}

	if !config.Quiet {
		handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}

	cleanup := func() {}
	if config.LogFile != "" {
		fl, err := log.NewFileLogger(config.LogFile)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		cleanup = func() { _ = fl.Close() }
	}

	if len(loggers) == 0 {
		return log.NoopLogger{}, cleanup, nil
	}
	return log.NewMultiLogger(loggers...), cleanup, nil
}

// simulator handles the interactive command loop.
type simulator struct {
	manager   *realtime.Manager
	transport *realtimetest.StubTransport
	rl        *readline.Instance
}

func (s *simulator) out() io.Writer {
	return s.rl.Stdout()
}

// loadConfig opens every subscription declared in a YAML file.
func (s *simulator) loadConfig(path string) error {
	configs, err := realtime.LoadSubscriptions(path)
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		s.attachCallbacks(&cfg)
		if _, err := s.manager.Open(cfg); err != nil {
			return fmt.Errorf("open %s: %w", cfg.Topic, err)
		}
		fmt.Fprintf(s.out(), "Opened %s\n", cfg.Topic)
	}
	return nil
}

// attachCallbacks wires consumer callbacks that print what a real
// application would react to.
func (s *simulator) attachCallbacks(cfg *realtime.SubscriptionConfig) {
	topic := cfg.Topic
	cfg.OnInvalidate = func(keys []string) {
		fmt.Fprintf(s.out(), "\n[%s] %s: invalidate %s\n",
			time.Now().Format("15:04:05"), topic, strings.Join(keys, ", "))
		s.rl.Refresh()
	}
	cfg.OnFailure = func(topic, filter string) {
		fmt.Fprintf(s.out(), "\n[%s] %s: GAVE UP (filter %q)\n",
			time.Now().Format("15:04:05"), topic, filter)
		s.rl.Refresh()
	}
}

func (s *simulator) run() {
	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "open", "o":
			s.cmdOpen(args)

		case "close":
			s.cmdClose(args)

		case "enable":
			s.cmdEnable(args)

		case "disable":
			s.cmdDisable(args)

		case "list", "status", "l":
			s.cmdList()

		case "emit", "e":
			s.cmdEmit(args)

		case "payload", "p":
			s.cmdPayload(args)

		case "kill":
			s.cmdKill(args)

		case "quit", "exit", "q":
			fmt.Fprintln(s.out(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.out(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *simulator) printHelp() {
	fmt.Fprintln(s.out(), `
Rowstream Simulator Commands:
  Subscriptions:
    open <topic> [filter] [key,key...]  - Open a subscription
    close <topic>                       - Close a subscription for good
    enable <topic>                      - Re-enable a disabled or failed subscription
    disable <topic>                     - Disable a subscription (stays registered)
    list                                - Show all subscriptions and their states

  Transport Scripting:
    emit <topic> subscribed|closed|timeout|error  - Deliver a lifecycle status
    payload <topic> [insert|update|delete]        - Deliver a change record
    kill <topic>                                  - Let the channel die silently
                                                    (only the health probe notices)

  General:
    help   - Show this help
    quit   - Exit`)
}

func (s *simulator) cmdOpen(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out(), "Usage: open <topic> [filter] [key,key...]")
		return
	}

	cfg := realtime.SubscriptionConfig{
		Topic:    args[0],
		Table:    args[0],
		Debounce: config.Debounce,
	}
	if len(args) >= 2 {
		cfg.Filter = args[1]
	}
	if len(args) >= 3 {
		cfg.InvalidationKeys = strings.Split(args[2], ",")
	} else {
		cfg.InvalidationKeys = []string{args[0]}
	}
	s.attachCallbacks(&cfg)

	sub, err := s.manager.Open(cfg)
	if err != nil {
		fmt.Fprintf(s.out(), "Open failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out(), "Opened %s (%s, state %s)\n", sub.Topic(), sub.ID()[:8], sub.State())
}

func (s *simulator) cmdClose(args []string) {
	sub := s.lookup(args)
	if sub == nil {
		return
	}
	sub.Close()
	fmt.Fprintf(s.out(), "Closed %s\n", sub.Topic())
}

func (s *simulator) cmdEnable(args []string) {
	sub := s.lookup(args)
	if sub == nil {
		return
	}
	sub.Enable()
	fmt.Fprintf(s.out(), "%s: %s\n", sub.Topic(), sub.State())
}

func (s *simulator) cmdDisable(args []string) {
	sub := s.lookup(args)
	if sub == nil {
		return
	}
	sub.Disable()
	fmt.Fprintf(s.out(), "%s: %s\n", sub.Topic(), sub.State())
}

func (s *simulator) cmdList() {
	if s.manager.Count() == 0 {
		fmt.Fprintln(s.out(), "No subscriptions")
		return
	}

	fmt.Fprintf(s.out(), "\nSubscriptions (%d):\n", s.manager.Count())
	fmt.Fprintln(s.out(), "-------------------------------------------")
	for i := 0; i < s.transport.SubscribeCount(); i++ {
		ch := s.transport.Channel(i)
		if ch.Released() {
			continue
		}
		sub, ok := s.manager.Get(ch.Topic())
		if !ok {
			continue
		}
		fmt.Fprintf(s.out(), "  %s\n", sub.Topic())
		fmt.Fprintf(s.out(), "      ID:      %s\n", sub.ID())
		fmt.Fprintf(s.out(), "      State:   %s\n", sub.State())
		fmt.Fprintf(s.out(), "      Channel: %s\n", ch.State())
		if f := sub.Config().Filter; f != "" {
			fmt.Fprintf(s.out(), "      Filter:  %s\n", f)
		}
	}

	// Channel-less subscriptions (disabled, failed, reconnecting).
	seen := map[string]bool{}
	for i := 0; i < s.transport.SubscribeCount(); i++ {
		if ch := s.transport.Channel(i); !ch.Released() {
			seen[ch.Topic()] = true
		}
	}
	for _, topic := range s.topics() {
		if seen[topic] {
			continue
		}
		sub, ok := s.manager.Get(topic)
		if !ok {
			continue
		}
		fmt.Fprintf(s.out(), "  %s\n", sub.Topic())
		fmt.Fprintf(s.out(), "      ID:      %s\n", sub.ID())
		fmt.Fprintf(s.out(), "      State:   %s\n", sub.State())
		fmt.Fprintln(s.out(), "      Channel: none")
	}
	fmt.Fprintln(s.out())
}

// topics returns the topics of every subscription ever opened through the
// transport, deduplicated in creation order.
func (s *simulator) topics() []string {
	var out []string
	seen := map[string]bool{}
	for i := 0; i < s.transport.SubscribeCount(); i++ {
		topic := s.transport.Channel(i).Topic()
		if !seen[topic] {
			seen[topic] = true
			out = append(out, topic)
		}
	}
	return out
}

func (s *simulator) cmdEmit(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out(), "Usage: emit <topic> subscribed|closed|timeout|error")
		return
	}

	ch := s.liveChannel(args[0])
	if ch == nil {
		return
	}

	switch strings.ToLower(args[1]) {
	case "subscribed", "sub":
		ch.EmitStatus(realtime.StatusSubscribed, nil)
	case "closed", "close":
		ch.EmitStatus(realtime.StatusClosed, nil)
	case "timeout", "timedout":
		ch.EmitStatus(realtime.StatusTimedOut, nil)
	case "error", "err":
		ch.EmitStatus(realtime.StatusChannelError, errors.New("simulated channel error"))
	default:
		fmt.Fprintf(s.out(), "Unknown status: %s\n", args[1])
		return
	}

	if sub, ok := s.manager.Get(args[0]); ok {
		fmt.Fprintf(s.out(), "%s: %s\n", args[0], sub.State())
	}
}

func (s *simulator) cmdPayload(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out(), "Usage: payload <topic> [insert|update|delete]")
		return
	}

	ch := s.liveChannel(args[0])
	if ch == nil {
		return
	}

	kind := realtime.EventInsert
	if len(args) >= 2 {
		parsed, err := realtime.ParseChangeEvent(args[1])
		if err != nil {
			fmt.Fprintf(s.out(), "Invalid change kind: %v\n", err)
			return
		}
		kind = parsed
	}

	ch.EmitPayload(realtime.Payload{
		Kind:            kind,
		Schema:          ch.Options().Schema,
		Table:           ch.Options().Table,
		CommitTimestamp: time.Now(),
	})
	fmt.Fprintf(s.out(), "Delivered %s to %s\n", kind, args[0])
}

func (s *simulator) cmdKill(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out(), "Usage: kill <topic>")
		return
	}

	ch := s.liveChannel(args[0])
	if ch == nil {
		return
	}
	ch.SetState(realtime.ChannelClosed)
	fmt.Fprintf(s.out(), "%s: channel dead, no status emitted (health probe interval %s)\n",
		args[0], config.Health)
}

// lookup resolves a topic argument to its open subscription.
func (s *simulator) lookup(args []string) *realtime.Subscription {
	if len(args) < 1 {
		fmt.Fprintln(s.out(), "Usage: <command> <topic>")
		return nil
	}
	sub, ok := s.manager.Get(args[0])
	if !ok {
		fmt.Fprintf(s.out(), "No subscription for topic: %s\n", args[0])
		return nil
	}
	return sub
}

// liveChannel returns the newest unreleased channel for a topic.
func (s *simulator) liveChannel(topic string) *realtimetest.StubChannel {
	var found *realtimetest.StubChannel
	for i := 0; i < s.transport.SubscribeCount(); i++ {
		ch := s.transport.Channel(i)
		if ch.Topic() == topic && !ch.Released() {
			found = ch
		}
	}
	if found == nil {
		fmt.Fprintf(s.out(), "No live channel for topic: %s (try 'open' or wait for a reconnect)\n", topic)
	}
	return found
}
