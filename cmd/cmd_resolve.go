// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pdxmaps/pdxmaps/resolve"
	"github.com/pdxmaps/pdxmaps/spatial"
	"github.com/pdxmaps/pdxmaps/utils/textutils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var resolveArgs = struct {
	maxResults  int
	bbox        string
	includeRaw  bool
	file        string
	concurrency int
}{}

var resolveCmd = &cobra.Command{
	Use:   "resolve [query]",
	Short: "Resolve free text into Portland address candidates",
	Long: `
Resolves a query into scored address candidates with coordinates and prints
them as JSON. With --file, every non blank line of the file is a query and
one JSON result is printed per line, in file order.
`,
	Args: func(cmd *cobra.Command, args []string) error {
		if resolveArgs.file != "" {
			return cobra.NoArgs(cmd, args)
		}

		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		var bbox []float64
		if resolveArgs.bbox != "" {
			b, err := spatial.ParseBBox(resolveArgs.bbox)
			if err != nil {
				return fmt.Errorf("--bbox: %w", err)
			}

			bbox = b.Slice()
		}

		tb := newToolbox(options)
		template := resolve.ResolveRequest{
			MaxResults: resolve.Limit(resolveArgs.maxResults),
			BBox:       bbox,
			IncludeRaw: resolveArgs.includeRaw,
		}

		if resolveArgs.file != "" {
			return resolveFile(cmd.Context(), tb.ResolveAddress, template, resolveArgs.file, cmd.OutOrStdout())
		}

		req := template
		req.Query = strings.Join(args, " ")

		result, err := tb.ResolveAddress(cmd.Context(), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	},
}

type resolveFunc func(ctx context.Context, req resolve.ResolveRequest) (*resolve.ResolveResult, error)

// batchMetrics summarizes a batch run.
type batchMetrics struct {
	Queries    int
	Failed     int
	Candidates int
	Geocoded   int
	Fallback   int
}

func (m *batchMetrics) add(result *resolve.ResolveResult) {
	for _, c := range result.Candidates {
		m.Candidates++

		switch c.Source {
		case resolve.SourceGeocoderMatch:
			m.Geocoded++
		case resolve.SourceFallbackDefault:
			m.Fallback++
		}
	}
}

func readQueries(r io.Reader) ([]string, error) {
	var queries []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		queries = append(queries, line)
	}

	return queries, scanner.Err()
}

func resolveFile(ctx context.Context, fn resolveFunc, template resolve.ResolveRequest, path string, out io.Writer) error {
	in := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		in = f
	}

	queries, err := readQueries(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	metrics, err := resolveBatch(ctx, fn, template, queries, out, resolveArgs.concurrency)

	log.Printf(
		"Batch complete - %s queries (%s failed), %s candidates, %s geocoded and %s at the fallback point.",
		textutils.FormatInt(int64(metrics.Queries)),
		textutils.FormatInt(int64(metrics.Failed)),
		textutils.FormatInt(int64(metrics.Candidates)),
		textutils.FormatInt(int64(metrics.Geocoded)),
		textutils.FormatInt(int64(metrics.Fallback)),
	)

	return err
}

// resolveBatch resolves queries concurrently and writes one JSON line per
// successful query to out, in input order. Failed queries are logged and
// reported together once the batch ends.
func resolveBatch(ctx context.Context, fn resolveFunc, template resolve.ResolveRequest, queries []string, out io.Writer, concurrency int) (batchMetrics, error) {
	n := len(queries)
	results := make([]*resolve.ResolveResult, n)
	errs := make([]error, n)

	var bar *progressbar.ProgressBar
	if f, ok := out.(*os.File); ok && f == os.Stdout && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(n,
			progressbar.OptionSetDescription("Resolving"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, query := range queries {
		g.Go(func() error {
			req := template
			req.Query = query
			// the template bbox is shared, each request gets its own copy
			req.BBox = append([]float64(nil), template.BBox...)

			results[i], errs[i] = fn(ctx, req)

			if bar == nil {
				log.Printf("Resolving %q", query)
			} else {
				_ = bar.Add(1)
			}

			return nil
		})
	}

	_ = g.Wait()

	metrics := batchMetrics{Queries: n}
	enc := json.NewEncoder(out)

	var failures []error

	for i, result := range results {
		if errs[i] != nil {
			metrics.Failed++

			log.Printf("Resolving %q failed - %s", queries[i], errs[i])
			failures = append(failures, fmt.Errorf("%q: %w", queries[i], errs[i]))

			continue
		}

		metrics.add(result)

		if err := enc.Encode(result); err != nil {
			return metrics, err
		}
	}

	return metrics, errors.Join(failures...)
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	flags := resolveCmd.Flags()
	flags.IntVarP(&resolveArgs.maxResults, "max-results", "n", resolve.DefaultMaxResults, "Maximum number of candidates (1-25)")
	flags.StringVar(&resolveArgs.bbox, "bbox", "", "Keep candidates inside min_lon,min_lat,max_lon,max_lat")
	flags.BoolVar(&resolveArgs.includeRaw, "include-raw", false, "Include the suggestion service record of each candidate")
	flags.StringVarP(&resolveArgs.file, "file", "f", "", "Resolve every line of this file, - reads stdin")
	flags.IntVar(&resolveArgs.concurrency, "concurrency", 4, "Queries resolved at once with --file")
}
