package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/filebox/filebox-client/internal/api"
	"github.com/filebox/filebox-client/internal/config"
	"github.com/filebox/filebox-client/internal/constants"
	"github.com/filebox/filebox-client/internal/events"
	"github.com/filebox/filebox-client/internal/filemanager"
	"github.com/filebox/filebox-client/internal/logging"
	"github.com/filebox/filebox-client/internal/state"
)

// configPath returns the --config value or the default path.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetDefaultConfigPath()
}

// loadConfig loads the config file and applies environment and flags.
// Priority: flags > environment > config file > defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlags(baseURL, proxyMode, logFile, maxRetries)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.NeedsProxyPassword() {
		password, err := promptProxyPassword(cfg.ProxyUser)
		if err != nil {
			return nil, err
		}
		cfg.ProxyPassword = password
	}

	return cfg, nil
}

// promptProxyPassword reads the proxy password without echo.
func promptProxyPassword(user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("proxy password for %s is required: set %s", user, config.EnvProxyPassword)
	}

	fmt.Fprintf(os.Stderr, "Proxy password for %s: ", user)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read proxy password: %w", err)
	}
	return string(password), nil
}

// session wires the client, the page and the file manager for one command.
type session struct {
	client   *api.Client
	page     *state.Page
	manager  *filemanager.Manager
	eventBus *events.EventBus
	logger   *logging.Logger

	trace     <-chan events.Event
	stopTrace chan struct{}
	traceDone chan struct{}
}

// newSession loads configuration and creates a session.
func newSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return openSession(cfg, GetLogger())
}

// openSession creates a session from a validated config.
func openSession(cfg *config.Config, log *logging.Logger) (*session, error) {
	client, err := api.NewClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	bus := events.NewEventBus(constants.EventBusDefaultBuffer)
	page := state.NewPage(bus)

	s := &session{
		client:   client,
		page:     page,
		manager:  filemanager.NewManager(client, page, log, bus),
		eventBus: bus,
		logger:   log,
	}
	s.startEventTrace()
	return s, nil
}

// startEventTrace logs every published event at debug level.
func (s *session) startEventTrace() {
	trace, stop, done := s.eventBus.SubscribeAll(), make(chan struct{}), make(chan struct{})
	s.trace, s.stopTrace, s.traceDone = trace, stop, done
	log := s.logger

	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-trace:
				if !ok {
					return
				}
				log.Debug().Str("event", string(ev.Type())).Time("at", ev.Timestamp()).Msg("Event")
			case <-stop:
				return
			}
		}
	}()
}

// Close stops the event trace and releases the event bus.
func (s *session) Close() {
	if s.stopTrace != nil {
		close(s.stopTrace)
		<-s.traceDone
		s.eventBus.UnsubscribeAll(s.trace)
		s.stopTrace = nil
	}
	if dropped := s.eventBus.GetDroppedEventCount(); dropped > 0 {
		s.logger.Warn().Int64("dropped", dropped).Msg("Events dropped: a subscriber fell behind")
	}
	s.eventBus.Close()
}

// resultError turns a failed Result into a command error so the process
// exits non-zero. The failure itself has already been logged.
func resultError(operation string, res filemanager.Result) error {
	if res.OK() {
		return nil
	}
	if res.Kind == filemanager.ResultStatusError {
		return fmt.Errorf("%s failed with status %d", operation, res.StatusCode)
	}
	return fmt.Errorf("%s failed: %v", operation, res.Err)
}
