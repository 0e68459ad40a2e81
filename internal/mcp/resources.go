package mcp

// Resource URIs
const (
	ResourceRecent     = "seobrief://recent"
	ResourceStats      = "seobrief://stats"
	ResourceExclusions = "seobrief://exclusions"
)

// Resource defines an MCP resource
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceDefinitions lists all available resources
var ResourceDefinitions = []Resource{
	{
		URI:         ResourceRecent,
		Name:        "Recent Research",
		Description: "Last 10 research runs with their top keyword",
		MimeType:    "text/plain",
	},
	{
		URI:         ResourceStats,
		Name:        "Research Summary",
		Description: "Run counts, quick wins and best keywords so far",
		MimeType:    "text/plain",
	},
	{
		URI:         ResourceExclusions,
		Name:        "Exclusion Terms",
		Description: "Active exclusion terms and pending suggestions",
		MimeType:    "text/plain",
	},
}

func (s *Server) resources() []Resource {
	if s.db == nil {
		return []Resource{}
	}
	return ResourceDefinitions
}

// resourcesListResult is the response for resources/list
type resourcesListResult struct {
	Resources []Resource `json:"resources"`
}

// readResourceParams is the params for resources/read
type readResourceParams struct {
	URI string `json:"uri"`
}

// readResourceResult is the response for resources/read
type readResourceResult struct {
	Contents []resourceContent `json:"contents"`
}

type resourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}
