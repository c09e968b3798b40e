package config

import (
	"errors"
	"fmt"
	"time"

	"reflow_oven/internal/models"

	"github.com/spf13/viper"
)

// Config is the full load-time configuration surface. Every temperature,
// gain, cadence and safety threshold the controller uses lives here so that
// per-oven calibration never requires a rebuild.
type Config struct {
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`

	MQTT MQTT `mapstructure:"mqtt"`
	GPIO GPIO `mapstructure:"gpio"`

	Control  Control  `mapstructure:"control"`
	Profiles Profiles `mapstructure:"profiles"`
	Gains    Gains    `mapstructure:"gains"`
	Safety   Safety   `mapstructure:"safety"`
	Input    Input    `mapstructure:"input"`
}

// MQTT configures the telemetry publisher. Disabled by default so the
// controller runs without a broker.
type MQTT struct {
	Enabled     bool   `mapstructure:"enabled"`
	BrokerURL   string `mapstructure:"broker_url"`
	ClientID    string `mapstructure:"client_id"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

// GPIO selects the character-device lines for the SSR, the front button and
// the buzzer. When disabled the engine runs against the simulated plant.
type GPIO struct {
	Enabled   bool   `mapstructure:"enabled"`
	Chip      string `mapstructure:"chip"`
	HeaterPin int    `mapstructure:"heater_pin"`
	ButtonPin int    `mapstructure:"button_pin"`
	BuzzerPin int    `mapstructure:"buzzer_pin"`
}

// Control holds the loop cadences and the time-proportioning window.
type Control struct {
	TickEvery    time.Duration `mapstructure:"tick_every"`    // polling loop
	SensorEvery  time.Duration `mapstructure:"sensor_every"`  // sampling cadence
	SampleEvery  time.Duration `mapstructure:"sample_every"`  // PID cadence
	Window       time.Duration `mapstructure:"window"`        // duty-cycle window
	DisplayEvery time.Duration `mapstructure:"display_every"` // telemetry cadence
	NotifyDelay  time.Duration `mapstructure:"notify_delay"`  // terminal stage dwell
}

// ProfileTemps are the per-profile envelope temperatures.
type ProfileTemps struct {
	SoakMaxC   float64 `mapstructure:"soak_max_c"`
	ReflowMaxC float64 `mapstructure:"reflow_max_c"`
}

// Profiles holds both solder profiles plus the thresholds shared between
// them.
type Profiles struct {
	LeadFree ProfileTemps `mapstructure:"lead_free"`
	Leaded   ProfileTemps `mapstructure:"leaded"`

	SoakMinC      float64       `mapstructure:"soak_min_c"`      // preheat target
	CoolMinC      float64       `mapstructure:"cool_min_c"`      // run-complete threshold
	RoomMaxC      float64       `mapstructure:"room_max_c"`      // too-hot-to-start threshold
	SoakStepC     float64       `mapstructure:"soak_step_c"`     // micro-ramp increment
	SoakStepEvery time.Duration `mapstructure:"soak_step_every"` // micro-ramp period
}

// Temps returns the envelope for the given profile.
func (p Profiles) Temps(profile models.Profile) ProfileTemps {
	if profile == models.ProfileLeaded {
		return p.Leaded
	}
	return p.LeadFree
}

// StagedGains is a far/near pair with the proximity band that selects
// between them.
type StagedGains struct {
	Far      models.GainSet `mapstructure:"far"`
	Near     models.GainSet `mapstructure:"near"`
	NearBand float64        `mapstructure:"near_band_c"`
}

// Gains is the full gain table.
type Gains struct {
	Preheat StagedGains    `mapstructure:"preheat"`
	Soak    models.GainSet `mapstructure:"soak"`
	Reflow  StagedGains    `mapstructure:"reflow"`
	Bake    models.GainSet `mapstructure:"bake"`
}

// Safety holds every supervisor threshold.
type Safety struct {
	CycleMaxTempC float64       `mapstructure:"cycle_max_temp_c"`
	CycleMaxTime  time.Duration `mapstructure:"cycle_max_time"`

	PreheatCheckEvery time.Duration `mapstructure:"preheat_check_every"` // checkpoint spacing
	PreheatMinRisesC  []float64     `mapstructure:"preheat_min_rises_c"` // cumulative rise per checkpoint
	PreheatDeadline   time.Duration `mapstructure:"preheat_deadline"`

	SoakDeadline   time.Duration `mapstructure:"soak_deadline"`
	SoakToleranceC float64       `mapstructure:"soak_tolerance_c"`

	ReflowDeadline   time.Duration `mapstructure:"reflow_deadline"`
	BangBangMinRiseC float64       `mapstructure:"bang_bang_min_rise_c"`
	BangBangWindow   time.Duration `mapstructure:"bang_bang_window"`
}

// Input holds the button decoder timings.
type Input struct {
	DebounceHold time.Duration `mapstructure:"debounce_hold"`
	LongPress    time.Duration `mapstructure:"long_press"`
}

// Load reads configs/config.yml, applies defaults and validates the result.
// A missing config file is tolerated; defaults then drive everything.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath("configs")
	v.SetConfigName("config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, used by tests and as the
// baseline for Load.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "reflow.db")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker_url", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "reflow-oven")
	v.SetDefault("mqtt.topic_prefix", "workshop/reflow")

	v.SetDefault("gpio.enabled", false)
	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.heater_pin", 17)
	v.SetDefault("gpio.button_pin", 27)
	v.SetDefault("gpio.buzzer_pin", 22)

	v.SetDefault("control.tick_every", "20ms")
	v.SetDefault("control.sensor_every", "100ms")
	v.SetDefault("control.sample_every", "1s")
	v.SetDefault("control.window", "1s")
	v.SetDefault("control.display_every", "1s")
	v.SetDefault("control.notify_delay", "3s")

	v.SetDefault("profiles.lead_free.soak_max_c", 200.0)
	v.SetDefault("profiles.lead_free.reflow_max_c", 245.0)
	v.SetDefault("profiles.leaded.soak_max_c", 180.0)
	v.SetDefault("profiles.leaded.reflow_max_c", 224.0)
	v.SetDefault("profiles.soak_min_c", 150.0)
	v.SetDefault("profiles.cool_min_c", 100.0)
	v.SetDefault("profiles.room_max_c", 50.0)
	v.SetDefault("profiles.soak_step_c", 5.0)
	v.SetDefault("profiles.soak_step_every", "9s")

	v.SetDefault("gains.preheat.far", map[string]any{"p": 100.0, "i": 0.025, "d": 20.0})
	v.SetDefault("gains.preheat.near", map[string]any{"p": 50.0, "i": 0.05, "d": 25.0})
	v.SetDefault("gains.preheat.near_band_c", 10.0)
	v.SetDefault("gains.soak", map[string]any{"p": 300.0, "i": 0.05, "d": 250.0})
	v.SetDefault("gains.reflow.far", map[string]any{"p": 300.0, "i": 0.05, "d": 350.0})
	v.SetDefault("gains.reflow.near", map[string]any{"p": 150.0, "i": 0.1, "d": 300.0})
	v.SetDefault("gains.reflow.near_band_c", 15.0)
	v.SetDefault("gains.bake", map[string]any{"p": 100.0, "i": 0.025, "d": 20.0})

	v.SetDefault("safety.cycle_max_temp_c", 280.0)
	v.SetDefault("safety.cycle_max_time", "10m")
	v.SetDefault("safety.preheat_check_every", "30s")
	v.SetDefault("safety.preheat_min_rises_c", []float64{5, 35, 65})
	v.SetDefault("safety.preheat_deadline", "150s")
	v.SetDefault("safety.soak_deadline", "240s")
	v.SetDefault("safety.soak_tolerance_c", 10.0)
	v.SetDefault("safety.reflow_deadline", "330s")
	v.SetDefault("safety.bang_bang_min_rise_c", 3.0)
	v.SetDefault("safety.bang_bang_window", "10s")

	v.SetDefault("input.debounce_hold", "50ms")
	v.SetDefault("input.long_press", "2s")
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if c.Control.SampleEvery <= 0 || c.Control.Window <= 0 {
		return fmt.Errorf("control.sample_every and control.window must be positive")
	}
	if c.Control.SensorEvery <= 0 || c.Control.TickEvery <= 0 {
		return fmt.Errorf("control.sensor_every and control.tick_every must be positive")
	}
	if c.Profiles.SoakMinC >= c.Profiles.LeadFree.SoakMaxC ||
		c.Profiles.SoakMinC >= c.Profiles.Leaded.SoakMaxC {
		return fmt.Errorf("profiles.soak_min_c must be below both soak_max_c values")
	}
	if c.Profiles.LeadFree.SoakMaxC >= c.Profiles.LeadFree.ReflowMaxC ||
		c.Profiles.Leaded.SoakMaxC >= c.Profiles.Leaded.ReflowMaxC {
		return fmt.Errorf("soak_max_c must be below reflow_max_c for each profile")
	}
	if c.Safety.CycleMaxTempC <= c.Profiles.LeadFree.ReflowMaxC {
		return fmt.Errorf("safety.cycle_max_temp_c must exceed the hottest reflow_max_c")
	}
	if len(c.Safety.PreheatMinRisesC) == 0 {
		return fmt.Errorf("safety.preheat_min_rises_c must name at least one checkpoint")
	}
	if c.Profiles.SoakStepC <= 0 || c.Profiles.SoakStepEvery <= 0 {
		return fmt.Errorf("profiles.soak_step_c and soak_step_every must be positive")
	}
	return nil
}
