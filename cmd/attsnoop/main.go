package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/XC-/attsnoop"
	"github.com/XC-/attsnoop/snoop"
	"github.com/XC-/attsnoop/store"
)

var (
	flgFile      = cli.StringFlag{Name: "file, f", Usage: "HCI capture to inspect (btsnoop, pcap or pcapng)", Required: true}
	flgFormat    = cli.StringFlag{Name: "format", Value: string(snoop.FormatAuto), Usage: "capture format: auto, btsnoop, pcap or pcapng"}
	flgDB        = cli.StringFlag{Name: "db", Usage: "also save the run to this sqlite database"}
	flgShortUUID = cli.BoolFlag{Name: "short-uuid", Usage: "only show the first group of 128-bit UUIDs"}
	flgNames     = cli.BoolFlag{Name: "names", Usage: "append the assigned name of well-known UUIDs"}
	flgNoColor   = cli.BoolFlag{Name: "no-color", Usage: "disable colored output"}
	flgLogLevel  = cli.StringFlag{Name: "log-level", Value: "warning", Usage: "debug, info, warning or error"}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "attsnoop"
	app.Usage = "List the ATT reads and writes found in a Bluetooth HCI capture"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{flgFile, flgFormat, flgDB, flgShortUUID, flgNames, flgNoColor, flgLogLevel}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	log := logrus.New()
	log.Out = c.App.ErrWriter
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	log.SetLevel(level)

	format, err := snoop.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}
	path := c.String("file")
	raws, err := snoop.Open(path, format)
	if err != nil {
		return err
	}
	log.Debugf("%s: %d records for the classifier", path, len(raws))

	tr := attsnoop.New(attsnoop.WithLogger(log))
	txs, err := tr.Run(raws)
	if err != nil {
		return errors.Wrap(err, path)
	}

	p := newPrinter(c.App.Writer, !c.Bool("no-color"))
	p.shortUUID = c.Bool("short-uuid")
	p.names = c.Bool("names")
	for _, tx := range txs {
		p.println(tx)
	}

	const hint = "; start the capture before connecting to the device"
	switch {
	case len(raws) == 0:
		log.Warn("capture holds no HCI events or ACL data")
	case len(tr.Names()) == 0:
		log.Warn("no attribute discovery found" + hint)
	}

	if dbPath := c.String("db"); dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.SaveRun(context.Background(), path, tr.Names(), txs)
		if err != nil {
			return errors.Wrapf(err, "save to %s", dbPath)
		}
		log.WithField("run", id).Infof("saved %d transactions to %s", len(txs), dbPath)
	}
	return nil
}
