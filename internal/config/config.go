package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host         string    `koanf:"host"`
	BaseCurrency string    `koanf:"basecurrency"`
	Frontend     Frontend  `koanf:"frontend"`
	InforEuro    InforEuro `koanf:"inforeuro"`
	LumpSum      LumpSum   `koanf:"lumpsum"`
	Database     Database  `koanf:"db"`
}

// LumpSum holds the daily per diem amounts in the base currency.
type LumpSum struct {
	Catering  float64 `koanf:"catering"`
	Overnight float64 `koanf:"overnight"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

// InforEuro configures the external monthly exchange rate source.
type InforEuro struct {
	BaseURL string `koanf:"baseurl"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host:         "http://localhost:3000",
		BaseCurrency: "EUR",
		Frontend: Frontend{
			Enabled: true,
		},
		InforEuro: InforEuro{
			BaseURL: "https://ec.europa.eu/budg/inforeuro/api/public",
		},
		LumpSum: LumpSum{
			Catering:  28,
			Overnight: 20,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "reisegeld",
			Pass:   "",
			Name:   "reisegeld",
			Schema: "reisegeld",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "REISEGELD_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "REISEGELD_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
