package client

import "log/slog"

type Option func(c *Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.l = l
	}
}

func WithConfig(conf Config) Option {
	return func(c *Client) {
		c.conf = conf
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}
