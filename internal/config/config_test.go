package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/fuelplan/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DBPath, convey.ShouldBeEmpty)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxBatchSize, convey.ShouldEqual, config.MaxBatchSize)
			convey.So(cfg.BatchConcurrency, convey.ShouldBeBetweenOrEqual, 1, config.MaxBatchSize)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with a single bad field", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"unknown level":     func(c *config.Config) { c.LogLevel = "loud" },
			"zero dedupe":       func(c *config.Config) { c.DedupeSize = 0 },
			"zero concurrency":  func(c *config.Config) { c.BatchConcurrency = 0 },
			"batch too large":   func(c *config.Config) { c.MaxBatchSize = 7 },
			"negative shutdown": func(c *config.Config) { c.ShutdownTimeoutSec = -1 },
		}

		convey.Convey("Then each is rejected with ErrInvalidConfig", func() {
			for _, mutate := range cases {
				cfg := config.New(context.Background())
				mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
