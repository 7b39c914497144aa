package commands

import (
	"errors"
	"path/filepath"
	"yst-fantasy/internal/collector"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/config"
	"yst-fantasy/internal/oauth"
	"yst-fantasy/internal/oauth1"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/scrapers/sleeper"
	"yst-fantasy/internal/scrapers/tank01"
	"yst-fantasy/internal/scrapers/yahoo"
)

func dumpOutput(cfg config.Config, name string) (telemetry.MessageOutput, error) {
	if cfg.DumpDir == "" {
		return nil, nil
	}
	return telemetry.NewFilesystemOutput(filepath.Join(cfg.DumpDir, name))
}

func newOAuth2Client(cfg config.Config) (*oauth.Client, error) {
	output, err := dumpOutput(cfg, "yahoo_oauth2")
	if err != nil {
		return nil, err
	}
	return oauth.NewClient(oauth.ClientOptions{
		ClientId:     cfg.Yahoo.OAuth2.ClientId,
		ClientSecret: cfg.Yahoo.OAuth2.ClientSecret,
		RedirectUri:  cfg.Yahoo.OAuth2.RedirectUri,
		Output:       output,
	}, chrono.NewStandardTime(), tel)
}

func newSession(cfg config.Config) (oauth.Session, error) {
	session := oauth.Session{
		File:           oauth.TokenFile{Path: cfg.Yahoo.TokenFile},
		Time:           chrono.NewStandardTime(),
		Legacy:         cfg.Yahoo.Legacy,
		Signer:         oauth1.NewStandardSigner(),
		ConsumerKey:    cfg.Yahoo.OAuth1.ConsumerKey,
		ConsumerSecret: cfg.Yahoo.OAuth1.ConsumerSecret,
	}
	if !cfg.Yahoo.Legacy {
		client, err := newOAuth2Client(cfg)
		if err != nil {
			return oauth.Session{}, err
		}
		session.OAuth2 = client
	}
	return session, nil
}

func newFetcher(cfg config.Config, provider reconcile.Provider) (collector.Fetcher, error) {
	output, err := dumpOutput(cfg, provider.String())
	if err != nil {
		return nil, err
	}

	switch provider {
	case reconcile.ProviderYahoo:
		session, err := newSession(cfg)
		if err != nil {
			return nil, err
		}
		authorizer, err := session.Authorizer()
		if err != nil {
			return nil, err
		}
		return yahoo.NewClient(yahoo.Options{
			GameKey:    cfg.Yahoo.GameKey,
			Authorizer: authorizer,
			Output:     output,
		}, tel)
	case reconcile.ProviderSleeper:
		return sleeper.NewClient(sleeper.Options{
			Sport:  cfg.Sleeper.Sport,
			Output: output,
		}, tel)
	case reconcile.ProviderTank01:
		err := cfg.RequireTank01()
		if err != nil {
			return nil, err
		}
		return tank01.NewClient(tank01.Options{
			ApiKey: cfg.Tank01.ApiKey,
			Host:   cfg.Tank01.Host,
			Output: output,
		}, tel)
	}
	return nil, errors.New("unknown provider")
}

// newFetchers builds a fetcher for every provider that is configured, the rest are
// reported and left out.
func newFetchers(cfg config.Config) map[reconcile.Provider]collector.Fetcher {
	out := map[reconcile.Provider]collector.Fetcher{}
	for _, p := range reconcile.Providers {
		fetcher, err := newFetcher(cfg, p)
		if err != nil {
			tel.ReportWarning("cli.new-fetcher", p.String(), err)
			continue
		}
		out[p] = fetcher
	}
	return out
}
