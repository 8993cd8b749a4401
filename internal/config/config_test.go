package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeConfig(content string) string {
	path := filepath.Join(s.T().TempDir(), "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigSuite) TestLoadFullConfig() {
	path := s.writeConfig(`
telegram:
  token: "123:abc"
  channel_id: -100200300
  update_timeout: 30
http:
  host: "127.0.0.1"
  port: 9090
games:
  votes_to_start: 4
  bst_record: 700
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal("123:abc", cfg.Telegram.Token)
	s.Equal(int64(-100200300), cfg.Telegram.ChannelID)
	s.Equal(30, cfg.Telegram.UpdateTimeout)
	s.Equal("127.0.0.1", cfg.HTTP.Host)
	s.Equal(9090, cfg.HTTP.Port)
	s.Equal(4, cfg.Games.VotesToStart)
	s.Equal(700, cfg.Games.BSTRecord)
}

func (s *ConfigSuite) TestLoadAppliesDefaults() {
	path := s.writeConfig(`
telegram:
  token: "123:abc"
  channel_id: -100200300
`)

	cfg, err := Load(path)
	s.Require().NoError(err)

	s.Equal(60, cfg.Telegram.UpdateTimeout)
	s.Equal(8080, cfg.HTTP.Port)
	s.Equal(6, cfg.Games.VotesToStart)
	s.Equal(691, cfg.Games.BSTRecord)
}

func (s *ConfigSuite) TestEnvironmentTokenOverridesFile() {
	s.T().Setenv("TELEGRAM_BOT_TOKEN", "456:env")
	path := s.writeConfig(`
telegram:
  token: "123:abc"
  channel_id: -100200300
`)

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("456:env", cfg.Telegram.Token)
}

func (s *ConfigSuite) TestEnvironmentTokenAloneSuffices() {
	s.T().Setenv("TELEGRAM_BOT_TOKEN", "456:env")
	path := s.writeConfig(`
telegram:
  channel_id: -100200300
`)

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("456:env", cfg.Telegram.Token)
}

func (s *ConfigSuite) TestMissingTokenFails() {
	s.T().Setenv("TELEGRAM_BOT_TOKEN", "")
	path := s.writeConfig(`
telegram:
  channel_id: -100200300
`)

	_, err := Load(path)
	s.Require().Error(err)
	s.Contains(err.Error(), "token")
}

func (s *ConfigSuite) TestMissingChannelFails() {
	path := s.writeConfig(`
telegram:
  token: "123:abc"
`)

	_, err := Load(path)
	s.Require().Error(err)
	s.Contains(err.Error(), "channel_id")
}

func (s *ConfigSuite) TestZeroVotesToStartFails() {
	path := s.writeConfig(`
telegram:
  token: "123:abc"
  channel_id: -100200300
games:
  votes_to_start: 0
`)

	_, err := Load(path)
	s.Require().Error(err)
	s.Contains(err.Error(), "votes_to_start")
}

func (s *ConfigSuite) TestMissingFileFails() {
	_, err := Load(filepath.Join(s.T().TempDir(), "nope.yaml"))
	s.Require().Error(err)
}

func (s *ConfigSuite) TestMalformedYAMLFails() {
	path := s.writeConfig("telegram: [not a mapping")
	_, err := Load(path)
	s.Require().Error(err)
}
