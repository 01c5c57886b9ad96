package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/signalforge/signalforge/forge"
	"github.com/signalforge/signalforge/inspect"
	"github.com/signalforge/signalforge/store"
	"github.com/urfave/cli/v3"
)

const verboseKey = "verbose"

func graphCommand() *cli.Command {
	return &cli.Command{
		Name:  "graph",
		Usage: "Run a demo graph through the store and dump its state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log every node lifecycle event",
			},
		},
		Action: runGraph,
	}
}

func runGraph(ctx context.Context, cmd *cli.Command) error {
	rt := forge.CreateRuntime(func(err error) {
		log.Panic(err)
	})
	if cmd.Bool(verboseKey) {
		rt.SetInspector(inspect.NewLogInspector(os.Stderr))
	}

	s := store.New(rt)
	width := s.CreateSignal(store.Number(3))
	height := s.CreateSignal(store.Number(4))
	area := s.CreateComputed(func() store.Value {
		w, _ := s.Get(width)
		h, _ := s.Get(height)
		return store.Number(w.Number() * h.Number())
	})
	label := s.CreateSignal(store.String("rect"))

	if _, err := s.Get(area); err != nil {
		return err
	}
	if err := s.BatchUpdate([]store.Update{
		{ID: width, Value: store.Number(30)},
		{ID: height, Value: store.Number(40)},
	}); err != nil {
		return err
	}
	if err := s.Set(label, store.String("big rect")); err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"id", "value", "version"})
	for _, id := range s.IDs() {
		v, err := s.Get(id)
		if err != nil {
			return err
		}
		ver, err := s.Version(id)
		if err != nil {
			return err
		}
		tbl.Append([]string{id, v.String(), fmt.Sprintf("%d", ver)})
	}
	tbl.Render()

	stats := rt.Stats()
	fmt.Printf("live nodes: %s, pooled: %s\n",
		humanize.Comma(int64(stats.LiveNodes)),
		humanize.Comma(int64(stats.PooledNodes)))
	return nil
}
