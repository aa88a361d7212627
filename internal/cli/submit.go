package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"input-portal/internal/app"
	"input-portal/internal/dictionary"
	"input-portal/internal/models"
)

type periodFlags struct {
	company string
	actor   string
	year    int
	quarter string
	month   int
}

func (p *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.company, "company", "", "company the data belongs to")
	cmd.Flags().StringVar(&p.actor, "actor", "portalctl", "name recorded as the submitter")
	cmd.Flags().IntVar(&p.year, "year", 0, "fiscal year")
	cmd.Flags().StringVar(&p.quarter, "quarter", "", "fiscal quarter, Q1..Q4")
	cmd.Flags().IntVar(&p.month, "month", 0, "month within the quarter, 1..3")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("quarter")
	_ = cmd.MarkFlagRequired("month")
}

func (p *periodFlags) period() (models.FiscalPeriod, error) {
	return models.NewFiscalPeriod(p.year, p.quarter, p.month)
}

// parseMetrics reads "name=value" pairs. The last "=" splits, so names may
// contain spaces but not "=".
func parseMetrics(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 {
			return nil, fmt.Errorf("metric %q: want name=value", arg)
		}
		name := strings.TrimSpace(arg[:i])
		v, err := strconv.ParseFloat(strings.TrimSpace(arg[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (r *runner) submitCmd() *cobra.Command {
	var (
		pf       periodFlags
		rawFiles []string
		partial  bool
	)
	cmd := &cobra.Command{
		Use:   "submit name=value...",
		Short: "Write a metric submission for a company and period",
		Long:  `Write a metric submission. Metrics are name=value pairs using either the dictionary name or its key form, e.g. gross_margin=41.5 (see "portalctl metrics").`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := pf.period()
			if err != nil {
				return err
			}
			metrics, err := parseMetrics(args)
			if err != nil {
				return err
			}
			return r.withApp(cmd.Context(), func(a *app.App) error {
				metrics, err := a.Dictionary.Normalize(metrics)
				if err != nil {
					return err
				}
				if !partial {
					if err := a.Dictionary.Check(metrics); err != nil {
						return err
					}
				}
				art, err := a.Submissions.SaveSubmission(cmd.Context(), pf.company, pf.actor, period, metrics, rawFiles...)
				if err != nil {
					return err
				}
				fmt.Fprintln(r.streams.Out, art.Key)
				fmt.Fprintln(r.streams.Out, art.SiblingKey)
				return nil
			})
		},
	}
	pf.bind(cmd)
	cmd.Flags().StringSliceVar(&rawFiles, "raw-file", nil, "reference to a stored raw upload (repeatable)")
	cmd.Flags().BoolVar(&partial, "partial", false, "skip the dictionary completeness check")
	return cmd
}

func (r *runner) metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the dictionary metrics and their key forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd.Context(), func(a *app.App) error {
				w := tabwriter.NewWriter(r.streams.Out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "METRIC\tKEY")
				for _, name := range a.Dictionary.Names() {
					fmt.Fprintf(w, "%s\t%s\n", name, dictionary.MetricKey(name))
				}
				return w.Flush()
			})
		},
	}
}

func (r *runner) uploadCmd() *cobra.Command {
	var pf periodFlags
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Store a raw file for a company and period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := pf.period()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return r.withApp(cmd.Context(), func(a *app.App) error {
				up, err := a.Submissions.SaveRawUpload(cmd.Context(), pf.company, pf.actor, period, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(r.streams.Out, "%s (%d bytes, sha256 %s)\n", up.Key, up.Size, up.Checksum)
				return nil
			})
		},
	}
	pf.bind(cmd)
	return cmd
}
