package orgserver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/civicseek/orgjobs/internal/engine"
	"github.com/civicseek/orgjobs/internal/engine/resolve"
	"github.com/civicseek/orgjobs/internal/runlog"
	"github.com/civicseek/orgjobs/internal/toolutil"
)

func registerResolveOrg(server *mcp.Server, res *resolve.Resolver, store *runlog.Store) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_org",
		Description: "Resolve an organization (municipality, First Nation, school district, health authority, library) to its official homepage, its jobs-listing URL, and the ATS platform serving it. Returns discovered-via provenance, a confidence score for the classification, and a needs-review flag when any stage could not resolve.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ResolveOrgInput) (*mcp.CallToolResult, engine.ResolveOrgOutput, error) {
		if input.Name == "" {
			return nil, engine.ResolveOrgOutput{}, fmt.Errorf("name is required")
		}

		cacheKey := engine.Key("resolve_org", input.Name, input.Type, input.Homepage, strconv.FormatBool(input.Fast))
		if out, ok := toolutil.CacheLoadJSON[engine.ResolveOrgOutput](ctx, res.Cache, cacheKey); ok {
			return nil, out, nil
		}

		org := resolve.Org{
			Name:     input.Name,
			Type:     resolve.ParseOrgType(toolutil.NormType(input.Type)),
			Homepage: input.Homepage,
		}

		seen, err := store.PreviouslySeen(ctx, org.Name)
		if err != nil {
			slog.Warn("run log lookup failed", slog.Any("error", err))
		}

		result := res.ResolveOrg(ctx, org, input.Fast)

		if err := store.Record(ctx, org, result); err != nil {
			slog.Warn("run log record failed", slog.Any("error", err))
		}

		out := engine.ResolveOrgOutput{
			Name:           org.Name,
			Homepage:       result.Homepage.URL,
			HomepageVia:    string(result.Homepage.DiscoveredVia),
			JobsURL:        result.JobsURL.URL,
			JobsURLVia:     string(result.JobsURL.DiscoveredVia),
			SourceType:     string(result.Classification.SourceType),
			AdapterID:      result.Classification.AdapterID,
			Confidence:     result.Classification.Confidence,
			NeedsReview:    result.NeedsReview,
			PreviouslySeen: seen,
		}
		out.Notes = result.JobsURL.Notes
		if result.ReviewReason != "" {
			out.Notes = result.ReviewReason
		}

		toolutil.CacheStoreJSON(ctx, res.Cache, cacheKey, out)
		return nil, out, nil
	})
}
