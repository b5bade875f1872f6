package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=5000"`
	AllowedUsers         string        `env:"ALLOWED_USERS,default=SAMUEL ANJOLA"`
	StaticDir            string        `env:"STATIC_DIR,default=public"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=1s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	BindSender           bool          `env:"BIND_SENDER,default=true"`
	DebugInspect         bool          `env:"DEBUG_INSPECT,default=false"`
}
