// Copyright 2026 The pdxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package portlandmaps

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pdxmaps/pdxmaps/utils/textutils"
)

// Section names a detail page family on PortlandMaps.
type Section string

// Detail page sections linked by the tools.
const (
	SectionProperty Section = "property"
	SectionZoning   Section = "zoning"
	SectionPermits  Section = "permits"
	SectionAssessor Section = "assessor"
)

// Pages builds links to the official pages for a suggestion.
type Pages struct {
	root string
}

// NewPages returns a link builder rooted at root, e.g. https://www.portlandmaps.com.
func NewPages(root string) *Pages {
	return &Pages{root: strings.TrimRight(root, "/")}
}

// Detail links a section page for s. Suggestions without an identifier get a
// search link instead since detail pages are keyed by it.
func (p *Pages) Detail(section Section, s Suggestion) string {
	if s.Value == "" {
		return p.Search(s.Label)
	}

	return fmt.Sprintf("%s/detail/%s/%s/%s_did/",
		p.root, section, textutils.Slug(s.Label), url.PathEscape(s.Value))
}

// Search links the site-wide search for text.
func (p *Pages) Search(text string) string {
	return p.root + "/?" + url.Values{"query": {text}}.Encode()
}
