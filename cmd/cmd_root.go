// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pdxmaps/pdxmaps/config"
	"github.com/pdxmaps/pdxmaps/geocoding"
	"github.com/pdxmaps/pdxmaps/portlandmaps"
	"github.com/pdxmaps/pdxmaps/resolve"
	"github.com/pdxmaps/pdxmaps/tools"
	"github.com/pdxmaps/pdxmaps/utils/httputils"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	// stdout carries MCP messages and JSON output, logs always go to stderr.
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "pdxmaps",
	Short: "Portland property records for AI assistants",
	Long: `
pdxmaps resolves free text into Portland addresses with coordinates and links
the zoning, permit and tax records published by the City of Portland and
Multnomah County. It serves them as MCP tools, as a JSON API or from the shell.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadOptions(cmd)
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var (
	// options is the effective configuration, set by loadOptions.
	options *config.Options

	// flagOptions receives the flag values; only flags set explicitly
	// override the environment.
	flagOptions = config.Default()
	envFile     string
	fallbackArg string
)

func loadOptions(cmd *cobra.Command) error {
	opts, err := config.Load(envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	for name, apply := range map[string]func(){
		"suggest-url":         func() { opts.SuggestURL = flagOptions.SuggestURL },
		"region-geocoder-url": func() { opts.RegionGeocoderURL = flagOptions.RegionGeocoderURL },
		"world-geocoder-url":  func() { opts.WorldGeocoderURL = flagOptions.WorldGeocoderURL },
		"pages-url":           func() { opts.PagesURL = flagOptions.PagesURL },
		"city":                func() { opts.City = flagOptions.City },
		"region":              func() { opts.Region = flagOptions.Region },
		"api-key":             func() { opts.APIKey = flagOptions.APIKey },
		"user-agent":          func() { opts.UserAgent = flagOptions.UserAgent },
		"http-timeout":        func() { opts.HTTPTimeout = flagOptions.HTTPTimeout },
		"trace-http":          func() { opts.EnableHTTPTrace = flagOptions.EnableHTTPTrace },
		"trace-http-body":     func() { opts.EnableHTTPBodyTrace = flagOptions.EnableHTTPBodyTrace },
		"listen":              func() { opts.ListenAddr = flagOptions.ListenAddr },
	} {
		if flags.Changed(name) {
			apply()
		}
	}

	if flags.Changed("fallback") {
		p, err := config.ParsePoint(fallbackArg)
		if err != nil {
			return fmt.Errorf("--fallback: %w", err)
		}

		opts.Fallback = p
	}

	if opts.UserAgent == "" {
		opts.UserAgent = fmt.Sprintf("pdxmaps/%s (+https://github.com/pdxmaps/pdxmaps)", Version)
	}

	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	options = opts

	return nil
}

// newToolbox wires the upstream clients, the resolver and the tools.
func newToolbox(opts *config.Options) *tools.Toolbox {
	var traceWriter io.Writer
	if opts.EnableHTTPTrace || opts.EnableHTTPBodyTrace {
		traceWriter = os.Stderr
	}

	client := httputils.NewClient(httputils.ClientOptions{
		UserAgent:   opts.UserAgent,
		Timeout:     opts.HTTPTimeout,
		TraceWriter: traceWriter,
		TraceBody:   opts.EnableHTTPBodyTrace,
	})

	suggester := portlandmaps.NewClient(client, opts.SuggestURL, opts.City, opts.APIKey)
	geocoder := geocoding.NewResolver(opts.Region,
		geocoding.NewRegionGeocoder(client, opts.RegionGeocoderURL),
		geocoding.NewWorldGeocoder(client, opts.WorldGeocoderURL),
	)

	return tools.New(
		resolve.NewService(suggester, geocoder, opts.Fallback),
		suggester,
		portlandmaps.NewPages(opts.PagesURL),
		tools.DefaultLinks,
	)
}

func init() {
	defaults := config.Default()
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&envFile, "env-file", ".env", "File with PDXMAPS_* variables, ignored when missing")
	flags.StringVar(&flagOptions.SuggestURL, "suggest-url", defaults.SuggestURL, "Address suggestion endpoint")
	flags.StringVar(&flagOptions.RegionGeocoderURL, "region-geocoder-url", defaults.RegionGeocoderURL, "First tier geocoder (findAddressCandidates)")
	flags.StringVar(&flagOptions.WorldGeocoderURL, "world-geocoder-url", defaults.WorldGeocoderURL, "Second tier geocoder (findAddressCandidates)")
	flags.StringVar(&flagOptions.PagesURL, "pages-url", defaults.PagesURL, "Root of the official property pages")
	flags.StringVar(&flagOptions.City, "city", defaults.City, "City sent to the suggestion service")
	flags.StringVar(&flagOptions.Region, "region", defaults.Region, "Region appended to geocoded addresses")
	flags.StringVar(&flagOptions.APIKey, "api-key", "", "API key for the suggestion service")
	flags.StringVar(&fallbackArg, "fallback", fmt.Sprintf("%v,%v", defaults.Fallback.Lng, defaults.Fallback.Lat), "lon,lat given to candidates no geocoder could place")
	flags.StringVar(&flagOptions.UserAgent, "user-agent", "", "User-Agent for outbound requests")
	flags.DurationVar(&flagOptions.HTTPTimeout, "http-timeout", defaults.HTTPTimeout, "Timeout of each outbound request")
	flags.BoolVar(&flagOptions.EnableHTTPTrace, "trace-http", false, "Display HTTP requests-responses")
	flags.BoolVar(&flagOptions.EnableHTTPBodyTrace, "trace-http-body", false, "Display HTTP requests-responses bodies")
}
