package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func exportFlags() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "copy the whole image to the file",
		ArgsUsage: "FILE",
		Action:    export,
	}
}

func export(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("output file is required")
	}

	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	f, err := os.OpenFile(c.Args().Get(0), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	p := mpb.New(mpb.WithOutput(c.App.ErrWriter))
	bar := p.AddBar(s.Store.Size(),
		mpb.PrependDecorators(decor.Name("export ")),
		mpb.AppendDecorators(decor.CountersKibiByte("% .1f / % .1f")),
	)
	// Proxy is not closed, it would close the file.
	digest, err := s.Store.Export(bar.ProxyWriter(f))
	if err != nil {
		bar.Abort(false)
		p.Wait()
		return err
	}
	p.Wait()

	if err := f.Sync(); err != nil {
		return errors.WithStack(err)
	}
	if err := f.Close(); err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintf(c.App.Writer, "digest: %016x\n", digest)
	return nil
}

func importFlags() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "overwrite the whole image with the content of the file",
		ArgsUsage: "FILE",
		Action:    importImage,
	}
}

func importImage(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("input file is required")
	}

	s, closeDev, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeDev()

	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	return s.Store.Import(f)
}
