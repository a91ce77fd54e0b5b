package cfg

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds every environment-configurable knob for the DLOB service.
type Config struct {
	Env                     string `mapstructure:"ENV"`
	Endpoint                string `mapstructure:"ENDPOINT"`
	WSEndpoint              string `mapstructure:"WS_ENDPOINT"`
	Port                    int    `mapstructure:"PORT"`
	UseWebsocket            bool   `mapstructure:"USE_WEBSOCKET"`
	UseOrderSubscriber      bool   `mapstructure:"USE_ORDER_SUBSCRIBER"`
	RateLimitCallsPerSecond int    `mapstructure:"RATE_LIMIT_CALLS_PER_SECOND"`
	AllowLoadTest           bool   `mapstructure:"ALLOW_LOAD_TEST"`
	Commit                  string `mapstructure:"COMMIT"`
	RedisAddr               string `mapstructure:"REDIS_ADDR"`
	MarketsJSON             string `mapstructure:"MARKETS_JSON"`
	TickIntervalMs          int    `mapstructure:"TICK_INTERVAL_MS"`
}

// Load reads the process environment into a Config, applying the defaults
// spec.md §6 names. Missing ENDPOINT is the one Fatal configuration error.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "devnet")
	v.SetDefault("PORT", 6969)
	v.SetDefault("USE_WEBSOCKET", false)
	v.SetDefault("USE_ORDER_SUBSCRIBER", false)
	v.SetDefault("RATE_LIMIT_CALLS_PER_SECOND", 1)
	v.SetDefault("ALLOW_LOAD_TEST", false)
	v.SetDefault("COMMIT", "unknown")
	v.SetDefault("TICK_INTERVAL_MS", 1000)
	v.SetDefault("MARKETS_JSON", defaultMarketsJSON)

	for _, key := range []string{
		"ENV", "ENDPOINT", "WS_ENDPOINT", "PORT", "USE_WEBSOCKET",
		"USE_ORDER_SUBSCRIBER", "RATE_LIMIT_CALLS_PER_SECOND",
		"ALLOW_LOAD_TEST", "COMMIT", "REDIS_ADDR", "MARKETS_JSON",
		"TICK_INTERVAL_MS",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Endpoint == "" {
		return nil, fmt.Errorf("ENDPOINT is required, cannot start")
	}

	return &c, nil
}

// defaultMarketsJSON seeds a process with a small devnet-shaped market set
// when MARKETS_JSON is unset, so the service has something to serve out of
// the box. Real deployments override this per environment.
const defaultMarketsJSON = `[
	{"type":"perp","index":0,"name":"SOL-PERP"},
	{"type":"perp","index":1,"name":"BTC-PERP"},
	{"type":"spot","index":0,"name":"USDC-SPOT"},
	{"type":"spot","index":1,"name":"SOL-SPOT","phoenixAddr":"","serumAddr":""}
]`
