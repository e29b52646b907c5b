package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jeremyhahn/go-totp/pkg/api"
	"github.com/jeremyhahn/go-totp/pkg/provision"
)

// settings are the defaults read from the config file and TOTP_* variables.
type settings struct {
	Issuer     string
	ModuleSize int
	QuietZone  int
	Level      provision.Level
}

// loadSettings reads an optional config file (any format viper supports)
// and overlays TOTP_ISSUER, TOTP_QR_MODULE_SIZE, TOTP_QR_QUIET_ZONE and
// TOTP_QR_LEVEL from the environment.
func loadSettings(path string) (*settings, error) {
	v := viper.New()
	v.SetDefault("issuer", api.DefaultIssuer)
	v.SetDefault("qr.module_size", provision.DefaultModuleSize)
	v.SetDefault("qr.quiet_zone", provision.DefaultQuietZone)
	v.SetDefault("qr.level", "M")

	v.SetEnvPrefix("totp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	level, err := provision.ParseLevel(v.GetString("qr.level"))
	if err != nil {
		return nil, err
	}

	return &settings{
		Issuer:     v.GetString("issuer"),
		ModuleSize: v.GetInt("qr.module_size"),
		QuietZone:  v.GetInt("qr.quiet_zone"),
		Level:      level,
	}, nil
}

func (s *settings) qrOptions() provision.Options {
	return provision.Options{
		Level:       s.Level,
		ModuleSize:  s.ModuleSize,
		QuietZone:   s.QuietZone,
		NoQuietZone: s.QuietZone == 0,
	}
}
