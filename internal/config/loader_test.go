package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/roach88/rinkleague/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rink.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearConfigEnvVars unsets every RINK_ variable so each Convey pass starts
// from the defaults. t.Setenv restores the originals after the test.
func clearConfigEnvVars(t *testing.T) {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, config.EnvPrefix) {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestConfigLoader(t *testing.T) {
	t.Setenv("RINK_CONFIG", "")

	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars(t)

		convey.Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			convey.Convey("Then the defaults apply", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DBDriver, convey.ShouldEqual, config.DriverSQLite)
				convey.So(cfg.DBPath, convey.ShouldEqual, "rinkleague.db")
				convey.So(cfg.HumanWait(), convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.SubmissionWindow(), convey.ShouldEqual, 10*time.Minute)
				convey.So(cfg.PlayoffTeams, convey.ShouldEqual, 8)
				convey.So(cfg.LateGameAI, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading a YAML file", func() {
			path := writeConfig(t, `
log_level: debug
log_format: json
db_path: /tmp/league.db
human_wait_seconds: 5
playoff_teams: 4
bye_policy: top-seeds
late_game_ai: false
`)
			cfg, err := config.Load(path)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/league.db")
				convey.So(cfg.HumanWaitSeconds, convey.ShouldEqual, 5)
				convey.So(cfg.PlayoffTeams, convey.ShouldEqual, 4)
				convey.So(cfg.ByePolicy, convey.ShouldEqual, "top-seeds")
				convey.So(cfg.LateGameAI, convey.ShouldBeFalse)
				convey.So(cfg.SubmissionWindowMinutes, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When RINK_CONFIG names the file and env overrides it", func() {
			t.Setenv("RINK_CONFIG", writeConfig(t, "season_id: 3\nplayoff_teams: 4\n"))
			t.Setenv("RINK_PLAYOFF_TEAMS", "16")
			t.Setenv("RINK_DB_PATH", "env.db")

			cfg, err := config.Load("")

			convey.Convey("Then env wins over the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SeasonID, convey.ShouldEqual, 3)
				convey.So(cfg.PlayoffTeams, convey.ShouldEqual, 16)
				convey.So(cfg.DBPath, convey.ShouldEqual, "env.db")
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then ErrLoadConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When postgres is selected without a DSN", func() {
			t.Setenv("RINK_DB_DRIVER", "postgres")

			_, err := config.Load("")

			convey.Convey("Then ErrInvalidConfig is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a valid config", t, func() {
		convey.So(config.New().Validate(), convey.ShouldBeNil)

		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }},
			{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"bad driver", func(c *config.Config) { c.DBDriver = "mysql" }},
			{"empty db path", func(c *config.Config) { c.DBPath = "" }},
			{"bad bye policy", func(c *config.Config) { c.ByePolicy = "coin-flip" }},
			{"zero season", func(c *config.Config) { c.SeasonID = 0 }},
			{"zero human wait", func(c *config.Config) { c.HumanWaitSeconds = 0 }},
			{"zero window", func(c *config.Config) { c.SubmissionWindowMinutes = 0 }},
			{"zero playoff size", func(c *config.Config) { c.PlayoffTeams = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When it has a "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)

				convey.Convey("Then Validate wraps ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}
	})
}
