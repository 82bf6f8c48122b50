package main

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/outofforest/chunkstore/calculation"
	"github.com/outofforest/chunkstore/types"
)

func historyFlags() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "manage the calculation history",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print all the calculations",
				Action: historyList,
			},
			{
				Name:      "show",
				Usage:     "print the calculation and the chunks it occupies",
				ArgsUsage: "INDEX",
				Action:    historyShow,
			},
			{
				Name:      "add",
				Usage:     "append the calculation",
				ArgsUsage: "EXPRESSION",
				Action:    historyAdd,
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "result",
						Usage: "evaluated result of the expression",
					},
				},
			},
			{
				Name:      "set",
				Usage:     "replace the calculation stored under the index",
				ArgsUsage: "INDEX EXPRESSION",
				Action:    historySet,
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "result",
						Usage: "evaluated result of the expression",
					},
				},
			},
			{
				Name:   "clear",
				Usage:  "drop all the calculations",
				Action: historyClear,
			},
		},
	}
}

func historyList(c *cli.Context) error {
	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	records, err := s.History.ReadAll()
	if err != nil {
		return err
	}
	for i, record := range records {
		fmt.Fprintf(c.App.Writer, "%d: %s\n", i, record)
	}
	return nil
}

func historyShow(c *cli.Context) error {
	index, err := indexArg(c, 0)
	if err != nil {
		return err
	}

	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	record, exists, err := s.History.Read(index)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("there is no calculation under index %d", index)
	}
	address, length, _, err := s.History.Extent(index)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\nchunks: %d-%d\n", record, address, address+types.ChunkAddress(length)-1)
	return nil
}

func historyAdd(c *cli.Context) error {
	record, err := calculationArg(c, 0)
	if err != nil {
		return err
	}

	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	index, err := s.History.Append(record)
	if err != nil {
		return err
	}
	if err := s.Sync(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d: %s\n", index, record)
	return nil
}

func historySet(c *cli.Context) error {
	index, err := indexArg(c, 0)
	if err != nil {
		return err
	}
	record, err := calculationArg(c, 1)
	if err != nil {
		return err
	}

	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	if err := s.History.Write(index, record); err != nil {
		return err
	}
	if err := s.Sync(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d: %s\n", index, record)
	return nil
}

func historyClear(c *cli.Context) error {
	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	if err := s.History.Clear(); err != nil {
		return err
	}
	return s.Sync()
}

func indexArg(c *cli.Context, n int) (types.ChunkIndex, error) {
	if c.Args().Len() <= n {
		return 0, errors.New("index is required")
	}
	index, err := strconv.ParseUint(c.Args().Get(n), 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid index %q", c.Args().Get(n))
	}
	return types.ChunkIndex(index), nil
}

func calculationArg(c *cli.Context, n int) (calculation.Calculation, error) {
	if c.Args().Len() <= n {
		return calculation.Calculation{}, errors.New("expression is required")
	}
	expression, err := calculation.Parse(c.Args().Get(n))
	if err != nil {
		return calculation.Calculation{}, err
	}

	var result *float64
	if c.IsSet("result") {
		r := c.Float64("result")
		result = &r
	}
	return calculation.New(expression, result), nil
}
