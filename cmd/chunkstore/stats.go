package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func statsFlags() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "print usage of the chunk table",
		Action: stats,
	}
}

func stats(c *cli.Context) error {
	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	free, err := s.Table.CountFree()
	if err != nil {
		return err
	}
	n, err := s.History.Len()
	if err != nil {
		return err
	}
	digest, err := s.Store.Digest()
	if err != nil {
		return err
	}

	layout := s.Table.Layout()
	w := c.App.Writer
	fmt.Fprintf(w, "map:          0x%04x-0x%04x\n", layout.Map.Start, layout.Map.End()-1)
	fmt.Fprintf(w, "heap:         0x%04x-0x%04x\n", layout.Heap.Start, layout.Heap.End()-1)
	fmt.Fprintf(w, "bitmap:       0x%04x-0x%04x\n", layout.Bitmap.Start, layout.Bitmap.End()-1)
	fmt.Fprintf(w, "chunks:       %d\n", s.Table.Chunks())
	fmt.Fprintf(w, "free chunks:  %d\n", free)
	fmt.Fprintf(w, "calculations: %d\n", n)
	fmt.Fprintf(w, "digest:       %016x\n", digest)
	return nil
}
