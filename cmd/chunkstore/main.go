package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/outofforest/chunkstore"
	"github.com/outofforest/chunkstore/pkg/filedev"
	"github.com/outofforest/chunkstore/pkg/logger"
	"github.com/outofforest/chunkstore/types"
)

var log = logger.Get("chunkstore")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("%+v", err)
	}
}

func newApp() *cli.App {
	config := chunkstore.DefaultConfig()
	return &cli.App{
		Name:  "chunkstore",
		Usage: "inspect and modify the EEPROM image of the calculator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "image",
				Aliases:  []string{"i"},
				Usage:    "path to the EEPROM image file",
				EnvVars:  []string{"CHUNKSTORE_IMAGE"},
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logs",
			},
			&cli.UintFlag{
				Name:  "settings-base",
				Usage: "address of the settings",
				Value: uint(config.SettingsBase),
			},
			&cli.UintFlag{
				Name:  "settings-length",
				Usage: "number of bytes reserved for the settings",
				Value: uint(config.SettingsLength),
			},
			&cli.UintFlag{
				Name:  "table-base",
				Usage: "address of the chunk table",
				Value: uint(config.TableBase),
			},
			&cli.UintFlag{
				Name:  "chunks",
				Usage: "number of chunks in the chunk table, multiple of 8",
				Value: uint(config.Chunks),
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				logger.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			createFlags(),
			formatFlags(),
			historyFlags(),
			settingsFlags(),
			statsFlags(),
			exportFlags(),
			importFlags(),
		},
	}
}

func configFromFlags(c *cli.Context) (chunkstore.Config, error) {
	config := chunkstore.Config{
		SettingsBase:   types.AbsoluteAddress(c.Uint("settings-base")),
		SettingsLength: uint32(c.Uint("settings-length")),
		TableBase:      types.AbsoluteAddress(c.Uint("table-base")),
		Chunks:         uint16(c.Uint("chunks")),
	}
	for _, name := range []string{"settings-base", "settings-length", "table-base", "chunks"} {
		if c.Uint(name) > types.MaxDeviceSize {
			return chunkstore.Config{}, errors.Errorf("value of --%s exceeds the device address range", name)
		}
	}
	return config, nil
}

// openStorage opens the image and the storage. Returned function closes the image.
func openStorage(c *cli.Context) (*chunkstore.Storage, func(), error) {
	config, err := configFromFlags(c)
	if err != nil {
		return nil, nil, err
	}

	dev, err := filedev.Open(c.String("image"))
	if err != nil {
		return nil, nil, err
	}
	closeDev := func() {
		if err := dev.Close(); err != nil {
			log.Errorf("closing image failed: %s", err)
		}
	}

	s, err := chunkstore.Open(dev, config)
	if err != nil {
		closeDev()
		return nil, nil, err
	}
	log.WithField("image", c.String("image")).Debugf("storage opened, chunks: %d", config.Chunks)
	return s, closeDev, nil
}
