package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/urfave/cli/v2"

	"github.com/sitefly/sitefly"
	"github.com/sitefly/sitefly/analytics"
)

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "Print page view statistics from the analytics database",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "db", Usage: "analytics database (default SITE_ANALYTICS_DB or data/analytics.db)"},
		&cli.IntFlag{Name: "days", Value: 30, Usage: "look back this many days"},
		&cli.IntFlag{Name: "limit", Value: 10, Usage: "rows per table"},
		&cli.BoolFlag{Name: "json", Usage: "print JSON instead of tables"},
	},
	Action: func(c *cli.Context) error {
		path := c.String("db")
		if path == "" {
			path = sitefly.EnvOr("SITE_ANALYTICS_DB", "data/analytics.db")
		}
		if _, err := os.Stat(path); err != nil {
			return cli.Exit(fmt.Sprintf("Error: no analytics database at %s (enable SITE_ANALYTICS on the server)", path), 1)
		}
		since := time.Now().UTC().AddDate(0, 0, -c.Int("days"))
		if err := runStats(c.Context, c.App.Writer, path, since, c.Int("limit"), c.Bool("json")); err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
		}
		return nil
	},
}

func runStats(ctx context.Context, w io.Writer, path string, since time.Time, limit int, asJSON bool) error {
	store, err := analytics.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sum, err := store.Summarize(ctx, since, limit)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Fprintf(w, "Since %s\n\n", sum.Since.Format(time.DateOnly))
	fmt.Fprintf(w, "Page views:      %d\n", sum.TotalViews)
	fmt.Fprintf(w, "Unique visitors: %d\n", sum.UniqueVisitors)
	fmt.Fprintf(w, "Bot visits:      %d\n", sum.BotVisits)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nPAGE\tVIEWS")
	for _, p := range sum.TopPages {
		fmt.Fprintf(tw, "%s\t%d\n", p.Path, p.Views)
	}
	for _, t := range []struct {
		title string
		rows  []analytics.DimensionStat
	}{
		{"BROWSER", sum.Browsers},
		{"DEVICE", sum.Devices},
		{"REFERRER", sum.Referrers},
	} {
		fmt.Fprintf(tw, "\n%s\tVIEWS\n", t.title)
		for _, d := range t.rows {
			fmt.Fprintf(tw, "%s\t%d\n", d.Name, d.Count)
		}
	}
	return tw.Flush()
}
