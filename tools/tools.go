// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools implements the named query tools offered to assistants.
//
// resolve_address runs the full resolve pipeline. The other tools look the
// address up, keep the best suggestion and render links to the official pages.
package tools

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"sort"
	"text/template"

	"github.com/pdxmaps/pdxmaps/portlandmaps"
	"github.com/pdxmaps/pdxmaps/resolve"
	"github.com/pdxmaps/pdxmaps/utils/textutils"
)

// Tool names.
const (
	NameResolveAddress  = "resolve_address"
	NamePropertyDetails = "get_property_details"
	NameZoning          = "get_zoning"
	NamePermits         = "search_permits"
	NameTaxInfo         = "get_tax_info"
)

// lookupCount is how many suggestions the text tools ask for.
const lookupCount = 5

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Links are the fixed official pages referenced by the text tools.
type Links struct {
	ZoningMap  string
	ZoningCode string
	Permitting string
	CountyTax  string
}

// DefaultLinks point at the City of Portland and Multnomah County sites.
var DefaultLinks = Links{
	ZoningMap:  "https://www.portlandmaps.com/bps/zoning/",
	ZoningCode: "https://www.portland.gov/code/33",
	Permitting: "https://www.portland.gov/ppd",
	CountyTax:  "https://multcoproptax.com/",
}

// Toolbox holds the dependencies shared by every tool.
type Toolbox struct {
	resolver  *resolve.Service
	suggester resolve.Suggester
	pages     *portlandmaps.Pages
	links     Links
}

// New creates a Toolbox.
func New(resolver *resolve.Service, suggester resolve.Suggester, pages *portlandmaps.Pages, links Links) *Toolbox {
	return &Toolbox{
		resolver:  resolver,
		suggester: suggester,
		pages:     pages,
		links:     links,
	}
}

// ResolveAddress runs resolve_address.
func (t *Toolbox) ResolveAddress(ctx context.Context, req resolve.ResolveRequest) (*resolve.ResolveResult, error) {
	return t.resolver.Resolve(ctx, req)
}

// PropertyDetails runs get_property_details.
func (t *Toolbox) PropertyDetails(ctx context.Context, address string) (string, error) {
	return t.render(ctx, "property", address)
}

// Zoning runs get_zoning.
func (t *Toolbox) Zoning(ctx context.Context, address string) (string, error) {
	return t.render(ctx, "zoning", address)
}

// Permits runs search_permits.
func (t *Toolbox) Permits(ctx context.Context, address string) (string, error) {
	return t.render(ctx, "permits", address)
}

// TaxInfo runs get_tax_info.
func (t *Toolbox) TaxInfo(ctx context.Context, address string) (string, error) {
	return t.render(ctx, "tax", address)
}

// TextTool is a tool answering an address with formatted text.
type TextTool func(ctx context.Context, address string) (string, error)

// TextTools returns the address based tools keyed by name.
func (t *Toolbox) TextTools() map[string]TextTool {
	return map[string]TextTool{
		NamePropertyDetails: t.PropertyDetails,
		NameZoning:          t.Zoning,
		NamePermits:         t.Permits,
		NameTaxInfo:         t.TaxInfo,
	}
}

// TextToolNames lists TextTools in a stable order.
func (t *Toolbox) TextToolNames() []string {
	names := make([]string, 0, 4)
	for name := range t.TextTools() {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

type view struct {
	Address     string
	Match       portlandmaps.Suggestion
	Others      int
	Links       Links
	SearchURL   string
	PropertyURL string
	ZoningURL   string
	PermitsURL  string
	AssessorURL string
}

func (t *Toolbox) render(ctx context.Context, name, address string) (string, error) {
	address = textutils.CollapseSpaces(address)
	if len([]rune(address)) < resolve.MinQueryLength {
		return "", &resolve.ValidationError{
			Field:   "address",
			Message: fmt.Sprintf("must be at least %d characters", resolve.MinQueryLength),
		}
	}

	suggestions, err := t.suggester.Suggest(ctx, address, lookupCount)
	if err != nil {
		return "", fmt.Errorf("looking up %q: %w", address, err)
	}

	v := view{
		Address:   address,
		Links:     t.links,
		SearchURL: t.pages.Search(address),
	}

	if len(suggestions) == 0 {
		name = "not_found"
	} else {
		best := suggestions[0]
		v.Match = best
		v.Others = len(suggestions) - 1
		v.PropertyURL = t.pages.Detail(portlandmaps.SectionProperty, best)
		v.ZoningURL = t.pages.Detail(portlandmaps.SectionZoning, best)
		v.PermitsURL = t.pages.Detail(portlandmaps.SectionPermits, best)
		v.AssessorURL = t.pages.Detail(portlandmaps.SectionAssessor, best)
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}

	return buf.String(), nil
}
