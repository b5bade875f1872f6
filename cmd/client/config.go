package main

type Config struct {
	ServerURL     string `env:"CHAT_SERVER_URL,default=http://localhost:5000"`
	Username      string `env:"CHAT_USERNAME"`
	DataDir       string `env:"CHAT_DATA_DIR,default=.chat"`
	Instance      string `env:"CHAT_INSTANCE,default=default"`
	Notifications bool   `env:"CHAT_NOTIFICATIONS,default=true"`
	BufferSize    int    `env:"CHAT_BUFFER_SIZE,default=64"`
	LogLevel      string `env:"LOG_LEVEL,default=WARN"`
}
