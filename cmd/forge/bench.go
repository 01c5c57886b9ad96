package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/signalforge/signalforge/forge"
	"github.com/urfave/cli/v3"
)

const configKey = "config"

type benchConfig struct {
	Widths     []int `toml:"widths"`
	Heights    []int `toml:"heights"`
	Iterations int   `toml:"iterations"`
}

func defaultBenchConfig() benchConfig {
	return benchConfig{
		Widths:     []int{1, 10, 100, 1_000},
		Heights:    []int{1, 10, 100, 1_000},
		Iterations: 100,
	}
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Propagation latency across wide and deep graphs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "TOML file with widths, heights and iterations",
			},
		},
		Action: runBench,
	}
}

func runBench(ctx context.Context, cmd *cli.Command) error {
	cfg := defaultBenchConfig()
	if path := cmd.String(configKey); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return fmt.Errorf("can't read bench config: %w", err)
		}
	}

	tbl := table.NewWriter()
	tbl.SetTitle("signalforge propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})

	for _, w := range cfg.Widths {
		for _, h := range cfg.Heights {
			tach := tachymeter.New(&tachymeter.Config{Size: cfg.Iterations})

			rt := forge.CreateRuntime(func(err error) {
				log.Panic(err)
			})
			src := forge.Signal(rt, 1)
			for i := 0; i < w; i++ {
				last := readable(src)
				for j := 0; j < h; j++ {
					prev := last
					c := forge.Computed(rt, func(oldValue int) int {
						return prev() + 1
					})
					last = readable(c)
				}

				final := last
				forge.Effect(rt, func() (forge.CleanupFn, error) {
					final()
					return nil, nil
				})
			}

			for i := 0; i < cfg.Iterations; i++ {
				start := time.Now()
				src.SetValue(src.Value() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					humanize.Comma(int64(rt.Stats().LiveNodes)),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	tbl.Render()
	return nil
}

type reader[T any] interface {
	Value() T
}

func readable[T any](r reader[T]) func() T {
	return r.Value
}
