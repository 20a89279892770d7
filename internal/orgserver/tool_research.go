package orgserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/civicseek/orgjobs/internal/engine"
	"github.com/civicseek/orgjobs/internal/engine/resolve"
	"github.com/civicseek/orgjobs/internal/toolutil"
)

func registerResearchHomepage(server *mcp.Server, res *resolve.Resolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "research_homepage",
		Description: "Research an organization's official homepage by name: knowledge-graph lookup for organization types it covers (First Nations, municipalities, school districts, health authorities, libraries), search-engine research with token-based page scoring otherwise. Refuses names with no distinctive tokens.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.ResearchHomepageInput) (*mcp.CallToolResult, engine.ResearchHomepageOutput, error) {
		if input.Name == "" {
			return nil, engine.ResearchHomepageOutput{}, fmt.Errorf("name is required")
		}

		cacheKey := engine.Key("research_homepage", input.Name, input.Type)
		if out, ok := toolutil.CacheLoadJSON[engine.ResearchHomepageOutput](ctx, res.Cache, cacheKey); ok {
			return nil, out, nil
		}

		r := res.ResearchHomepage(ctx, resolve.Org{
			Name: input.Name,
			Type: resolve.ParseOrgType(toolutil.NormType(input.Type)),
		})
		out := engine.ResearchHomepageOutput{
			Name:          input.Name,
			URL:           r.URL,
			DiscoveredVia: string(r.DiscoveredVia),
			Notes:         r.Notes,
			Found:         r.Found(),
		}

		toolutil.CacheStoreJSON(ctx, res.Cache, cacheKey, out)
		return nil, out, nil
	})
}
