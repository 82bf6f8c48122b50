package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/outofforest/chunkstore/settings"
)

func settingsFlags() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "manage the settings",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "print the settings",
				Action: settingsShow,
			},
			{
				Name:      "set",
				Usage:     "store the value of the setting",
				ArgsUsage: "NAME true|false",
				Action:    settingsSet,
			},
		},
	}
}

func settingsShow(c *cli.Context) error {
	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	for _, name := range settings.Names() {
		value, err := s.Settings.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s: %t\n", name, value)
	}
	return nil
}

func settingsSet(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return errors.New("name and value are required")
	}
	value, err := strconv.ParseBool(c.Args().Get(1))
	if err != nil {
		return errors.Wrapf(err, "invalid value %q", c.Args().Get(1))
	}

	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	if err := s.Settings.Set(c.Args().Get(0), value); err != nil {
		return err
	}
	if err := s.Settings.Save(); err != nil {
		return err
	}
	return s.Sync()
}
