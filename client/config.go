package client

import (
	"errors"
	"time"
)

var ErrNegativeTimeout = errors.New("negative timeout")

// Config tunes one engine instance. The zero value is usable after
// ValidateAndSetDefaults.
type Config struct {
	// DialTimeout bounds establishing the TCP connection.
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// CommandTimeout bounds every read performed while waiting for the
	// answer to a command, including batch continuation reads.
	CommandTimeout time.Duration `yaml:"command_timeout"`

	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ReadBufferSize sizes the transport's read buffer.
	ReadBufferSize int `yaml:"read_buffer_size"`

	// DeadlineWait makes WaitForPush treat its timeout as a wall-clock
	// deadline across retries. By default the timeout applies to each
	// read individually, so stale frames arriving during the wait extend
	// the total wait beyond the caller's timeout.
	DeadlineWait bool `yaml:"deadline_wait"`
}

func (c *Config) ValidateAndSetDefaults() error {
	if c.DialTimeout < 0 || c.CommandTimeout < 0 || c.WriteTimeout < 0 {
		return ErrNegativeTimeout
	}

	if c.DialTimeout == 0 {
		c.DialTimeout = 10 * time.Second
	}

	if c.CommandTimeout == 0 {
		c.CommandTimeout = 3 * time.Minute
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}

	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = 4096
	}

	return nil
}
