package config

import "time"

// DB holds database connection settings.
type DB struct {
	Url string `envconfig:"URL"`
}

// Jwt holds token signing settings.
type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

// Events selects and configures the event bus backend.
type Events struct {
	Backend string `envconfig:"BACKEND" default:"memory"`
	Stream  string `envconfig:"STREAM" default:"transactions"`
	Group   string `envconfig:"GROUP" default:"banking"`
}

// Redis holds connection settings for the Redis-backed event bus.
type Redis struct {
	URL          string        `envconfig:"URL" default:"redis://localhost:6379/0"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

// RateLimit bounds inbound HTTP request rates.
type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

// Email bounds outbound notification sends per recipient per rolling window.
type Email struct {
	From         string        `envconfig:"FROM" default:"no-reply@bank.local"`
	MaxPerWindow int           `envconfig:"MAX_PER_WINDOW" default:"100"`
	Window       time.Duration `envconfig:"WINDOW" default:"1h"`
}

// Scheduler configures the recurring payment scheduler cadence.
type Scheduler struct {
	Interval time.Duration `envconfig:"INTERVAL" default:"24h"`
}

// Server holds HTTP listener settings.
type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

// App is the root application configuration, loaded from the environment.
type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	DB        *DB        `envconfig:"DATABASE"`
	Jwt       *Jwt       `envconfig:"JWT"`
	Events    *Events    `envconfig:"EVENTS"`
	Redis     *Redis     `envconfig:"REDIS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Email     *Email     `envconfig:"EMAIL"`
	Scheduler *Scheduler `envconfig:"SCHEDULER"`
}
