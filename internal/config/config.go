package config

import (
	"fmt"
	"path/filepath"
	"yst-fantasy/internal/components/configutil"
	"yst-fantasy/internal/components/telemetry"
)

const DefaultFile = "ffdata.json5"

type YahooOAuth1 struct {
	ConsumerKey    string `json:"consumer_key"`
	ConsumerSecret string `json:"consumer_secret"`
}

type YahooOAuth2 struct {
	ClientId     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	// RedirectUri defaults to "oob" which makes yahoo show the code to the user.
	RedirectUri string `json:"redirect_uri"`
}

type Yahoo struct {
	OAuth1 YahooOAuth1 `json:"oauth1"`
	OAuth2 YahooOAuth2 `json:"oauth2"`
	// GameKey is "nfl" for the current season or a season specific key like "449".
	GameKey string `json:"game_key"`
	// TokenFile is where `auth yahoo` saves the token.
	TokenFile string `json:"token_file"`
	// Legacy makes collection sign requests with oauth1 instead of bearer tokens.
	Legacy bool `json:"legacy"`
}

type Sleeper struct {
	Sport string `json:"sport"`
}

type Tank01 struct {
	ApiKey string `json:"api_key"`
	Host   string `json:"host"`
}

type Config struct {
	Yahoo     Yahoo            `json:"yahoo"`
	Sleeper   Sleeper          `json:"sleeper"`
	Tank01    Tank01           `json:"tank01"`
	OutputDir string           `json:"output_dir"`
	// DumpDir, if set, receives a dump of every http exchange made.
	DumpDir   string           `json:"dump_dir"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func (c *Config) setDefaults() {
	if c.Yahoo.GameKey == "" {
		c.Yahoo.GameKey = "nfl"
	}
	if c.Yahoo.OAuth2.RedirectUri == "" {
		c.Yahoo.OAuth2.RedirectUri = "oob"
	}
	if c.Sleeper.Sport == "" {
		c.Sleeper.Sport = "nfl"
	}
	if c.Tank01.Host == "" {
		c.Tank01.Host = "tank01-nfl-live-in-game-real-time-statistics-nfl.p.rapidapi.com"
	}
	if c.OutputDir == "" {
		c.OutputDir = "data"
	}
	if c.Yahoo.TokenFile == "" {
		c.Yahoo.TokenFile = filepath.Join(c.OutputDir, "yahoo_token.json")
	}
}

// Load reads the config at path (and its .local override). When path is empty the
// default config file is searched for from the cwd upwards.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if path == "" {
		cfg, err = configutil.ReadRecursively[Config](DefaultFile)
	} else {
		cfg, err = configutil.ReadConfig[Config](path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// MissingField is returned by the Require* methods when a credential is not configured.
type MissingField struct {
	Field string
}

func (e MissingField) Error() string {
	return fmt.Sprintf("config: %s is not set", e.Field)
}

func (c Config) RequireOAuth1() error {
	if c.Yahoo.OAuth1.ConsumerKey == "" {
		return MissingField{Field: "yahoo.oauth1.consumer_key"}
	}
	if c.Yahoo.OAuth1.ConsumerSecret == "" {
		return MissingField{Field: "yahoo.oauth1.consumer_secret"}
	}
	return nil
}

func (c Config) RequireOAuth2() error {
	if c.Yahoo.OAuth2.ClientId == "" {
		return MissingField{Field: "yahoo.oauth2.client_id"}
	}
	if c.Yahoo.OAuth2.ClientSecret == "" {
		return MissingField{Field: "yahoo.oauth2.client_secret"}
	}
	return nil
}

func (c Config) RequireTank01() error {
	if c.Tank01.ApiKey == "" {
		return MissingField{Field: "tank01.api_key"}
	}
	return nil
}
