package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "anvil2text",
		Usage: "recovers sign and book text from Minecraft Anvil saves",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "save",
				Aliases:  []string{"s"},
				Usage:    "minecraft save folder",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.String("save"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// run drives the whole extraction. Pre-flight problems with the save folder
// keep the historical contract: a message on stdout and a zero exit, so
// scripts scraping the output keep working.
func run(savePath string) error {
	info, err := os.Stat(savePath)
	if os.IsNotExist(err) {
		fmt.Println("save folder does not exist")
		return nil
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		fmt.Println("save folder is not a directory")
		return nil
	}
	if _, err := os.Stat(filepath.Join(savePath, "level.dat")); os.IsNotExist(err) {
		fmt.Println("save version does not exist")
		return nil
	}

	world, err := OpenAnvilWorld(savePath)
	if err != nil {
		return err
	}
	if err := world.WriteReports("."); err != nil {
		return err
	}
	logrus.Infof("recovered %d signs and %d books", len(world.Signs), len(world.Books))
	_, _ = fmt.Fprintln(os.Stderr, "done!")
	return nil
}
