// cmd/ii/main.go
//
// ii - interactive searchable entity store.
//
// Entities are added and queried through an s-expression command line:
//
//	ii> (add "id1" "some indexed content")
//	ii> (get "id1")
//	ii> (query "some" "content")
//	ii> (exit)
//
// Entities are durable: every add is appended to the operation log before
// it is indexed, and the log is replayed on the next start.
package main

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	ucli "github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/pstiasny/inverted-index/pkg/cli"
	"github.com/pstiasny/inverted-index/pkg/db"
)

func main() {
	app := &ucli.App{
		Name:  "ii",
		Usage: "searchable entity store with an s-expression command line",
		Flags: []ucli.Flag{
			&ucli.StringFlag{
				Name:  "log",
				Usage: "operation log `FILE`",
				Value: "log",
			},
			&ucli.StringFlag{
				Name:  "data-dir",
				Usage: "forward index `DIR`",
				Value: "data",
			},
			&ucli.StringFlag{
				Name:  "block-size",
				Usage: "forward index block `SIZE` (e.g. 4KB)",
				Value: "4KB",
			},
			&ucli.IntFlag{
				Name:  "max-key-len",
				Usage: "inline key truncation limit in bytes",
				Value: 128,
			},
			&ucli.BoolFlag{
				Name:  "verbose",
				Usage: "log open/replay/close details to stderr",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "ii: %v\n", err)
		os.Exit(1)
	}
}

func run(c *ucli.Context) error {
	var blockSize datasize.ByteSize
	if err := blockSize.UnmarshalText([]byte(c.String("block-size"))); err != nil {
		return fmt.Errorf("bad --block-size: %w", err)
	}

	logger := zap.NewNop()
	if c.Bool("verbose") {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
	}
	defer logger.Sync()

	d, err := db.Open(db.Options{
		LogPath:           c.String("log"),
		DataDir:           c.String("data-dir"),
		BlockSize:         int(blockSize.Bytes()),
		MaxInnerKeyLength: c.Int("max-key-len"),
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	defer d.Close()

	return cli.NewREPL(d, os.Stdin, os.Stdout).Run()
}
