package engine

// --- MCP tool input types ---

type ResolveOrgInput struct {
	Name     string `json:"name" jsonschema:"Organization name, e.g. 'Township of Example' or 'Example First Nation'"`
	Type     string `json:"type,omitempty" jsonschema:"Organization type: municipality, first_nation, school_district, health_authority, library, other (default: other)"`
	Homepage string `json:"homepage,omitempty" jsonschema:"Known official homepage URL; leave empty to have it researched"`
	Fast     bool   `json:"fast,omitempty" jsonschema:"Reduced-cost mode: trimmed path probe and link crawl only, no browser or sitemap strategies"`
}

type ClassifyURLInput struct {
	URL string `json:"url" jsonschema:"Jobs page URL to classify"`
}

type ResearchHomepageInput struct {
	Name string `json:"name" jsonschema:"Organization name to research"`
	Type string `json:"type,omitempty" jsonschema:"Organization type: municipality, first_nation, school_district, health_authority, library, other"`
}

// --- MCP tool output types (JSON responses) ---

type ResolveOrgOutput struct {
	Name           string  `json:"name"`
	Homepage       string  `json:"homepage,omitempty"`
	HomepageVia    string  `json:"homepage_via,omitempty"`
	JobsURL        string  `json:"jobs_url,omitempty"`
	JobsURLVia     string  `json:"jobs_url_via,omitempty"`
	SourceType     string  `json:"source_type,omitempty"`
	AdapterID      string  `json:"adapter_id,omitempty"`
	Confidence     float64 `json:"confidence"`
	NeedsReview    bool    `json:"needs_review"`
	Notes          string  `json:"notes,omitempty"`
	PreviouslySeen bool    `json:"previously_seen,omitempty"`
}

type ClassifyURLOutput struct {
	URL        string  `json:"url"`
	SourceType string  `json:"source_type"`
	AdapterID  string  `json:"adapter_id"`
	Confidence float64 `json:"confidence"`
}

type ResearchHomepageOutput struct {
	Name          string `json:"name"`
	URL           string `json:"url,omitempty"`
	DiscoveredVia string `json:"discovered_via,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Found         bool   `json:"found"`
}
