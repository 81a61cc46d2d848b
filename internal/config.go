package internal

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	HealthPort           int           `env:"HEALTH_PORT,default=8081"`
	Environment          string        `env:"ENVIRONMENT,default=development"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,required=true"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}
