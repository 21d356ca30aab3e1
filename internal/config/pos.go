package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// POSConfig holds front-of-house settings that can change while the terminal runs.
type POSConfig struct {
	OrderNumberPrefix string `mapstructure:"orderNumberPrefix"`
	OrderNumberWidth  int    `mapstructure:"orderNumberWidth"`
	DefaultUser       string `mapstructure:"defaultUser"`
	Currency          string `mapstructure:"currency"`
	ShopName          string `mapstructure:"shopName"`
}

func DefaultPOSConfig() POSConfig {
	return POSConfig{
		OrderNumberPrefix: "3IR",
		OrderNumberWidth:  3,
		DefaultUser:       "Sistema",
		Currency:          "BRL",
		ShopName:          "Lanchonete 3 Irmãos",
	}
}

type POSConfigHolder struct {
	current atomic.Value // holds POSConfig
}

// NewStaticPOSConfigHolder returns a holder that never reloads.
func NewStaticPOSConfigHolder(cfg POSConfig) *POSConfigHolder {
	holder := &POSConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

// NewPOSConfigHolder reads pos.yml from the given paths (defaults to the
// system and working directories) and watches it for changes.
func NewPOSConfigHolder(paths ...string) (*POSConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pos")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"/etc/snackbar", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("SNACKBAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPOSConfig()
	v.SetDefault("pos.orderNumberPrefix", defaults.OrderNumberPrefix)
	v.SetDefault("pos.orderNumberWidth", defaults.OrderNumberWidth)
	v.SetDefault("pos.defaultUser", defaults.DefaultUser)
	v.SetDefault("pos.currency", defaults.Currency)
	v.SetDefault("pos.shopName", defaults.ShopName)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileFound = false
	}

	cfg, err := decodePOSConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &POSConfigHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodePOSConfig(v)
			if err != nil {
				log.Printf("[pos-config] reload ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[pos-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

func (h *POSConfigHolder) Get() POSConfig {
	if h == nil {
		return DefaultPOSConfig()
	}
	cfg, ok := h.current.Load().(POSConfig)
	if !ok {
		return DefaultPOSConfig()
	}
	return cfg
}

// decodePOSConfig reads the pos section over the defaults, so keys missing
// from pos.yml keep their default value.
func decodePOSConfig(v *viper.Viper) (POSConfig, error) {
	cfg := DefaultPOSConfig()
	if err := v.UnmarshalKey("pos", &cfg); err != nil {
		return POSConfig{}, err
	}
	if err := validatePOSConfig(cfg); err != nil {
		return POSConfig{}, err
	}
	return cfg, nil
}

func validatePOSConfig(cfg POSConfig) error {
	if strings.TrimSpace(cfg.OrderNumberPrefix) == "" {
		return errors.New("pos.orderNumberPrefix cannot be empty")
	}
	if cfg.OrderNumberWidth < 1 || cfg.OrderNumberWidth > 12 {
		return errors.New("pos.orderNumberWidth must be between 1 and 12")
	}
	if strings.TrimSpace(cfg.DefaultUser) == "" {
		return errors.New("pos.defaultUser cannot be empty")
	}
	return nil
}
