package server

import (
	"time"
)

type Conf struct {
	Addr         string        `mapstructure:"addr"`
	TimeoutRead  time.Duration `mapstructure:"timeout_read"`
	TimeoutWrite time.Duration `mapstructure:"timeout_write"`
	TimeoutIdle  time.Duration `mapstructure:"timeout_idle"`
	// Grace is how long in-flight requests get on shutdown.
	Grace time.Duration `mapstructure:"grace"`
}

// ServerConfigs returns the defaults. The write timeout covers a whole
// orchestration run, so it is well above a single backend round trip.
func ServerConfigs() *Conf {
	return &Conf{
		Addr:         "localhost:8000",
		TimeoutRead:  time.Second * 30,
		TimeoutWrite: time.Minute * 5,
		TimeoutIdle:  time.Second * 30,
		Grace:        time.Second * 10,
	}
}
