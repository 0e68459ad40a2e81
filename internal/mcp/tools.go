package mcp

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

var candidatesProperty = map[string]interface{}{
	"type":        "array",
	"description": "Keyword candidates. Each item needs a keyword; volume, competition (0-1) and cpc are optional.",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"keyword":     map[string]interface{}{"type": "string"},
			"volume":      map[string]interface{}{"type": "integer"},
			"competition": map[string]interface{}{"type": "number"},
			"cpc":         map[string]interface{}{"type": "number"},
		},
		"required": []string{"keyword"},
	},
}

var modeProperty = map[string]interface{}{
	"type":        "string",
	"enum":        []string{"easy", "medium", "hard"},
	"description": "Difficulty mode. easy favours low competition, hard favours volume (default: medium)",
}

// ScoringTools work without a database
var ScoringTools = []Tool{
	{
		Name:        "score_keywords",
		Description: "Score keyword candidates for ranking opportunity. Returns a 0-100 score, level, intent and quick-win flag per keyword, in input order.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"candidates": candidatesProperty,
				"mode":       modeProperty,
			},
			"required": []string{"candidates"},
		},
	},
	{
		Name:        "find_quick_wins",
		Description: "Pick the best quick-win keywords from a candidate list, relaxing the criteria step by step when too few qualify.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"candidates": candidatesProperty,
				"mode":       modeProperty,
				"min_results": map[string]interface{}{
					"type":        "integer",
					"description": "Keep relaxing until at least this many are found (default: 3)",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of keywords to return (default: 5)",
				},
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Seed topic used to synthesize variations when the list is too thin",
				},
			},
			"required": []string{"candidates"},
		},
	},
}

// StoreTools read stored research runs
var StoreTools = []Tool{
	{
		Name:        "list_runs",
		Description: "List past keyword research runs, newest first.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"topic": map[string]interface{}{
					"type":        "string",
					"description": "Filter by topic (case-insensitive partial match)",
				},
				"mode": modeProperty,
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"complete", "degraded", "all"},
					"description": "Filter by run status. Use 'all' or omit for no filter.",
				},
				"since_days": map[string]interface{}{
					"type":        "integer",
					"description": "Only show runs from the last N days",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (default: 20)",
				},
			},
		},
	},
	{
		Name:        "get_run",
		Description: "Get a research run with its ranked keywords and content brief.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID or a unique prefix of it",
				},
			},
			"required": []string{"id"},
		},
	},
	{
		Name:        "get_stats",
		Description: "Get aggregate statistics about research runs, quick wins and briefs.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"since_days": map[string]interface{}{
					"type":        "integer",
					"description": "Calculate stats for the last N days only",
				},
			},
		},
	},
}

// ResearchTool runs the full pipeline for a topic
var ResearchTool = Tool{
	Name:        "research_topic",
	Description: "Generate keyword ideas for a topic, pick quick wins, check the result page and write a content brief. The run is saved.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"topic": map[string]interface{}{
				"type":        "string",
				"description": "Seed topic, for example 'podcast microphones'",
			},
			"mode": modeProperty,
			"skip_serp": map[string]interface{}{
				"type":        "boolean",
				"description": "Skip the search result lookup",
			},
		},
		"required": []string{"topic"},
	},
}
