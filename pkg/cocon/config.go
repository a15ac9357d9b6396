package cocon

import "time"

// Configuration defaults.
const (
	DefaultPollInterval   = 1 * time.Second
	DefaultMaxRetries     = 5
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultSessionTimeout = 7 * time.Second
	DefaultNotifyTimeout  = 35 * time.Second
	DefaultQueueSize      = 1000
)

// Config holds the timing and retry settings of a client.
// It is immutable for the lifetime of a client instance.
type Config struct {
	// PollInterval is the recovery pause of the poll loop: the wait before
	// re-polling after an unexpected notify response and before restarting
	// a failed poll cycle.
	PollInterval time.Duration `yaml:"poll_interval"`

	// MaxRetries bounds retry attempts for connects and command sends.
	// Zero never attempts; negative retries forever.
	MaxRetries int `yaml:"max_retries"`

	// BackoffBase is the initial retry delay before doubling.
	BackoffBase time.Duration `yaml:"backoff_base"`

	// BackoffJitter is the maximum random delay added to each retry.
	// Zero uses the default (1s); negative disables jitter.
	BackoffJitter time.Duration `yaml:"backoff_jitter"`

	// SessionTimeout bounds connect and command requests.
	SessionTimeout time.Duration `yaml:"session_timeout"`

	// NotifyTimeout bounds one notification long-poll in total. It must
	// exceed the server-side poll hold time.
	NotifyTimeout time.Duration `yaml:"notify_timeout"`

	// QueueSize is the command queue capacity. Producers block once the
	// queue is full.
	QueueSize int `yaml:"queue_size"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:   DefaultPollInterval,
		MaxRetries:     DefaultMaxRetries,
		BackoffBase:    DefaultBackoffBase,
		SessionTimeout: DefaultSessionTimeout,
		NotifyTimeout:  DefaultNotifyTimeout,
		QueueSize:      DefaultQueueSize,
	}
}

// withDefaults fills unset timing fields. MaxRetries is left alone because
// zero is meaningful (never attempt).
func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = DefaultBackoffBase
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = DefaultSessionTimeout
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = DefaultNotifyTimeout
	}
	if c.QueueSize <= 0 {
		c.QueueSize = DefaultQueueSize
	}
	return c
}
