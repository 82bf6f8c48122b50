package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/outofforest/chunkstore"
	"github.com/outofforest/chunkstore/pkg/filedev"
	"github.com/outofforest/chunkstore/pkg/memdev"
)

func createFlags() *cli.Command {
	return &cli.Command{
		Name:   "create",
		Usage:  "create erased image file",
		Action: create,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "size",
				Usage: "size of the image in bytes",
				Value: chunkstore.DefaultDeviceSize,
			},
		},
	}
}

func create(c *cli.Context) error {
	dev, err := filedev.Create(c.String("image"), c.Int64("size"), memdev.ErasedByte)
	if err != nil {
		return err
	}
	if err := dev.Sync(); err != nil {
		_ = dev.Close()
		return err
	}
	log.Infof("image %s of %d bytes created", c.String("image"), dev.Size())
	return dev.Close()
}

func formatFlags() *cli.Command {
	return &cli.Command{
		Name:   "format",
		Usage:  "clear the history and restore default settings",
		Action: format,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hard",
				Usage: "zero the heap too",
			},
		},
	}
}

func format(c *cli.Context) error {
	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	if err := s.Format(c.Bool("hard")); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "formatted")
	return nil
}
