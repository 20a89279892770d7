package orgserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/civicseek/orgjobs/internal/engine"
	"github.com/civicseek/orgjobs/internal/engine/resolve"
	"github.com/civicseek/orgjobs/internal/toolutil"
)

func registerClassifyJobsURL(server *mcp.Server, res *resolve.Resolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_jobs_url",
		Description: "Classify which ATS platform serves a jobs page URL (Workday, iCIMS, NeoGov, BambooHR, ApplicantPro, Dayforce, ADP Workforce Now) or which shape it has (html_list, dom, pdf). Known vendor URLs classify from the URL alone without fetching.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ClassifyURLInput) (*mcp.CallToolResult, engine.ClassifyURLOutput, error) {
		if input.URL == "" {
			return nil, engine.ClassifyURLOutput{}, fmt.Errorf("url is required")
		}

		normalized := engine.NormalizeURL(input.URL)
		cacheKey := engine.Key("classify_jobs_url", normalized)
		if out, ok := toolutil.CacheLoadJSON[engine.ClassifyURLOutput](ctx, res.Cache, cacheKey); ok {
			return nil, out, nil
		}

		c := res.Classify(ctx, normalized)
		out := engine.ClassifyURLOutput{
			URL:        normalized,
			SourceType: string(c.SourceType),
			AdapterID:  c.AdapterID,
			Confidence: c.Confidence,
		}

		toolutil.CacheStoreJSON(ctx, res.Cache, cacheKey, out)
		return nil, out, nil
	})
}
