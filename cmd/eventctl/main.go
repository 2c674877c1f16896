package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/event-dashboard-api/internal/dto"
	"github.com/noah-isme/event-dashboard-api/internal/models"
	"github.com/noah-isme/event-dashboard-api/internal/service"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("eventctl: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "eventctl",
		Usage: "Manage dashboard events from the command line.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "Log level for diagnostics written to stderr."},
		},
		Commands: []*cli.Command{
			initCommand(),
			listCommand(),
			addCommand(),
			deleteCommand(),
			purgeCommand(),
			importCommand(),
			exportCommand(),
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create the events table if it does not exist.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "seed", Usage: "Insert a sample event into an empty table."},
		},
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			if !c.Bool("seed") {
				fmt.Fprintln(c.App.Writer, "events table ready")
				return nil
			}
			added, err := env.repo.Seed(c.Context)
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintln(c.App.Writer, "events table ready, sample event added")
				return nil
			}
			fmt.Fprintln(c.App.Writer, "events table ready, already populated")
			return nil
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print events, optionally filtered and sorted.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Usage: "Only events starting on or after this date."},
			&cli.StringFlag{Name: "to", Usage: "Only events ending on or before this date."},
			&cli.StringFlag{Name: "keyword", Usage: "Substring of title or description."},
			&cli.StringFlag{Name: "sort", Usage: "start_date, end_date or title."},
			&cli.StringFlag{Name: "order", Usage: "asc or desc."},
		},
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			req := dto.EventSearchRequest{
				StartDate: c.String("from"),
				EndDate:   c.String("to"),
				Keyword:   c.String("keyword"),
				SortBy:    c.String("sort"),
				Order:     c.String("order"),
			}
			var events []models.Event
			if req.IsEmpty() {
				events, _, err = env.events.List(c.Context)
			} else {
				events, err = env.events.Search(c.Context, req)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTART\tEND\tCOLOR\tDESCRIPTION")
			for _, ev := range events {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", ev.ID, ev.Title, ev.StartDate, ev.EndDate, models.ColorName(ev.Color), ev.Description)
			}
			return w.Flush()
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create one event.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "start", Required: true, Usage: "Start date (YYYY-MM-DD)."},
			&cli.StringFlag{Name: "end", Usage: "End date (YYYY-MM-DD), defaults to the start date."},
			&cli.StringFlag{Name: "color", Value: models.DefaultColor.Name, Usage: "Palette name, label or hex code."},
			&cli.StringFlag{Name: "description"},
		},
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			end := c.String("end")
			if end == "" {
				end = c.String("start")
			}
			event, err := env.events.Create(c.Context, dto.CreateEventRequest{
				Title:       c.String("title"),
				StartDate:   c.String("start"),
				EndDate:     end,
				Color:       c.String("color"),
				Description: c.String("description"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created event %d\n", event.ID)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete events by id. Missing ids are ignored.",
		ArgsUsage: "ID [ID...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return cli.Exit("at least one event id is required", 2)
			}
			ids := make([]int64, 0, c.NArg())
			for _, raw := range c.Args().Slice() {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return cli.Exit(fmt.Sprintf("invalid event id %q", raw), 2)
				}
				ids = append(ids, id)
			}

			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			for _, id := range ids {
				if err := env.events.Delete(c.Context, id); err != nil {
					return err
				}
			}
			fmt.Fprintf(c.App.Writer, "deleted %d event(s)\n", len(ids))
			return nil
		},
	}
}

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Delete every event. Requires the configured confirmation code.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "code", Required: true, EnvVars: []string{"EVENTCTL_PURGE_CODE"}},
		},
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.events.Purge(c.Context, c.String("code"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "deleted %d event(s)\n", result.Deleted)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Bulk load events from a csv, xlsx or ics file.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "Override the format derived from the file extension."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Validate rows without inserting them."},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("import file is required", 2)
			}
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close() //nolint:errcheck

			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			result, err := env.importer.Import(c.Context, file, filepath.Base(path), c.String("format"), c.Bool("dry-run"))
			if err != nil {
				return err
			}
			for _, failure := range result.Failed {
				fmt.Fprintf(c.App.ErrWriter, "row %d (%s): %s\n", failure.Row, failure.Title, failure.Reason)
			}
			if result.DryRun {
				fmt.Fprintf(c.App.Writer, "%d of %d row(s) valid\n", len(result.Events), result.Total)
				return nil
			}
			fmt.Fprintf(c.App.Writer, "imported %d of %d row(s)\n", result.Imported, result.Total)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every event to a file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: service.FormatCSV, Usage: "csv, xlsx, pdf or ics."},
			&cli.StringFlag{Name: "out", Usage: "Output path, defaults to a timestamped name in the working directory."},
		},
		Action: func(c *cli.Context) error {
			env, err := openEnv(c)
			if err != nil {
				return err
			}
			defer env.Close()

			file, err := env.exporter.Export(c.Context, c.String("format"))
			if err != nil {
				return err
			}
			out := c.String("out")
			if out == "" {
				out = file.Filename
			}
			if err := os.WriteFile(out, file.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			env.logger.Debug("export written", zap.String("path", out), zap.Int("bytes", len(file.Data)))
			fmt.Fprintf(c.App.Writer, "wrote %s\n", out)
			return nil
		},
	}
}
