package config

// Template is the commented file written by 'seobrief config init'. It must
// parse to the same values as Default().
const Template = `# seobrief configuration

[database]
path = "~/.local/share/seobrief/seobrief.db"

[llm]
provider = "gemini"          # gemini, ollama (local) or catalog (offline, deterministic)
model = "gemini-1.5-flash"
temperature = 0.4
max_keywords = 40            # candidates requested per seed topic
timeout_seconds = 60
concurrency = 3              # parallel seeds in batch research
ollama_url = "http://localhost:11434"
# API key read from GEMINI_API_KEY env var

[serp]
endpoint = "https://serpapi.com/search.json"
results = 10
timeout_seconds = 20
max_retries = 2
cache_ttl_hours = 72
# API key read from SERP_API_KEY env var

[cache]
backend = "sqlite"           # sqlite, redis or none
redis_addr = "localhost:6379"
redis_db = 0
compress = true              # zstd-compress cached SERP snapshots

[scoring]
mode = "medium"              # easy, medium or hard
min_results = 3
max_results = 5

[filters]
# Keywords containing any of these terms are dropped before scoring.
# Terms added with 'seobrief exclude add' are applied as well.
exclude_terms = [
    "free download",
    "torrent",
    "crack"
]
# Share of seed-topic words a candidate must contain (0 disables).
min_relevance = 0.0

[server]
host = "127.0.0.1"
port = 8650

[logging]
level = "info"               # trace, debug, info, warn, error
format = "console"           # console or json
output = "stderr"            # stderr, stdout or a file path

[mcp]
enabled = true
transport = "stdio"
`
