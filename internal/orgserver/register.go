// Package orgserver exposes the resolution engine as MCP tools. It is a thin
// boundary: validation, caching, and bookkeeping live here, all resolution
// semantics live in internal/engine/resolve.
package orgserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/civicseek/orgjobs/internal/engine/resolve"
	"github.com/civicseek/orgjobs/internal/runlog"
)

// RegisterTools registers the resolution tools on the given MCP server:
// resolve_org, classify_jobs_url, research_homepage. store may be nil when
// bookkeeping is disabled.
func RegisterTools(server *mcp.Server, res *resolve.Resolver, store *runlog.Store) {
	registerResolveOrg(server, res, store)
	registerClassifyJobsURL(server, res)
	registerResearchHomepage(server, res)
}
