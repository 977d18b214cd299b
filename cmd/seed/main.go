package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/travel"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	TravelOptions []seedOption `yaml:"travel_options"`
}

type seedOption struct {
	Type           string    `yaml:"type"`
	Source         string    `yaml:"source"`
	Destination    string    `yaml:"destination"`
	DateTime       time.Time `yaml:"date_time"`
	Price          string    `yaml:"price"`
	AvailableSeats int       `yaml:"available_seats"`
}

func (o seedOption) toDomain() (domain.TravelOption, error) {
	travelType, err := domain.ParseTravelType(o.Type)
	if err != nil {
		return domain.TravelOption{}, err
	}
	price, err := domain.ParseCents(o.Price)
	if err != nil {
		return domain.TravelOption{}, fmt.Errorf("price %q: %w", o.Price, err)
	}
	return domain.TravelOption{
		Type:           travelType,
		Source:         o.Source,
		Destination:    o.Destination,
		DateTime:       o.DateTime,
		PriceCents:     price,
		AvailableSeats: o.AvailableSeats,
	}, nil
}

func loadSeed(path string) ([]domain.TravelOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	options := make([]domain.TravelOption, 0, len(file.TravelOptions))
	for i, o := range file.TravelOptions {
		option, err := o.toDomain()
		if err != nil {
			return nil, fmt.Errorf("travel option %d: %w", i+1, err)
		}
		options = append(options, option)
	}
	return options, nil
}

func main() {
	cfgPath := flag.String("config", envOr("CONFIG_PATH", "config.yaml"), "path to the config file")
	seedPath := flag.String("file", "seed.yaml", "YAML file with travel options")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format)

	options, err := loadSeed(*seedPath)
	if err != nil {
		logrus.Fatal(err)
	}

	loc, err := cfg.App.Location()
	if err != nil {
		logrus.Fatalf("load timezone: %v", err)
	}

	ctx := context.Background()
	pool, db, err := repository.Open(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()
	defer db.Close()

	if err := repository.CreateDatabaseSchema(ctx, db); err != nil {
		logrus.Fatalf("create schema: %v", err)
	}

	var travelCache travel.Cache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Cache.TravelOptionsTTL())
		defer redisCache.Close()
		travelCache = redisCache
	}
	service := travel.NewTravelService(repository.NewTravelOptionRepository(db, loc), travelCache)

	for i := range options {
		if err := service.Create(ctx, &options[i]); err != nil {
			logrus.Fatalf("create %s: %v", options[i], err)
		}
		logrus.WithField("id", options[i].ID).Infof("created %s", options[i])
	}
	logrus.WithField("count", len(options)).Info("seed complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
