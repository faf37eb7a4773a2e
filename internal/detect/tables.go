package detect

// Dependency detection works by testing for known dependency-name keys,
// never by parsing versions.

// nodeStack maps package.json dependency names to stack entries.
var nodeStack = map[string]string{
	"react":      "React",
	"react-dom":  "React",
	"next":       "Next.js",
	"vue":        "Vue",
	"nuxt":       "Nuxt",
	"svelte":     "Svelte",
	"@sveltejs/kit": "SvelteKit",
	"@angular/core": "Angular",
	"express":    "Express",
	"fastify":    "Fastify",
	"koa":        "Koa",
	"@nestjs/core": "NestJS",
	"typescript": "TypeScript",
	"tailwindcss": "Tailwind CSS",
	"electron":   "Electron",
	"vite":       "Vite",
	"webpack":    "Webpack",
}

// nodeDatabases maps driver/ORM dependency names to datastores.
var nodeDatabases = map[string]string{
	"pg":        "PostgreSQL",
	"postgres":  "PostgreSQL",
	"mysql":     "MySQL",
	"mysql2":    "MySQL",
	"mongoose":  "MongoDB",
	"mongodb":   "MongoDB",
	"redis":     "Redis",
	"ioredis":   "Redis",
	"better-sqlite3": "SQLite",
	"sqlite3":   "SQLite",
}

// nodeTestFrameworks in probe order; the first present wins.
var nodeTestFrameworks = []string{"vitest", "jest", "mocha", "ava", "@playwright/test", "cypress"}

// pythonStack maps requirement names to stack entries.
var pythonStack = map[string]string{
	"django":    "Django",
	"flask":     "Flask",
	"fastapi":   "FastAPI",
	"celery":    "Celery",
	"numpy":     "NumPy",
	"pandas":    "pandas",
	"torch":     "PyTorch",
	"tensorflow": "TensorFlow",
}

var pythonDatabases = map[string]string{
	"psycopg2":        "PostgreSQL",
	"psycopg2-binary": "PostgreSQL",
	"asyncpg":         "PostgreSQL",
	"pymysql":         "MySQL",
	"pymongo":         "MongoDB",
	"redis":           "Redis",
	"sqlalchemy":      "SQL (SQLAlchemy)",
}

var pythonTestFrameworks = []string{"pytest", "nose2", "tox"}

// rustStack maps Cargo dependency names to stack entries.
var rustStack = map[string]string{
	"tokio":    "Tokio",
	"actix-web": "Actix Web",
	"axum":     "Axum",
	"rocket":   "Rocket",
	"serde":    "Serde",
	"clap":     "Clap",
}

var rustDatabases = map[string]string{
	"sqlx":      "SQL (sqlx)",
	"diesel":    "SQL (Diesel)",
	"rusqlite":  "SQLite",
	"mongodb":   "MongoDB",
	"redis":     "Redis",
	"tokio-postgres": "PostgreSQL",
}

// goStack maps module path substrings to stack entries.
var goStack = map[string]string{
	"github.com/gin-gonic/gin":  "Gin",
	"github.com/labstack/echo":  "Echo",
	"github.com/go-chi/chi":     "chi",
	"github.com/gofiber/fiber":  "Fiber",
	"github.com/spf13/cobra":    "Cobra",
	"google.golang.org/grpc":    "gRPC",
	"github.com/gorilla/mux":    "Gorilla Mux",
}

var goDatabases = map[string]string{
	"github.com/jackc/pgx":      "PostgreSQL",
	"github.com/lib/pq":         "PostgreSQL",
	"github.com/go-sql-driver/mysql": "MySQL",
	"go.mongodb.org/mongo-driver":    "MongoDB",
	"github.com/redis/go-redis":      "Redis",
	"modernc.org/sqlite":             "SQLite",
	"github.com/mattn/go-sqlite3":    "SQLite",
}

// composeImageDatabases maps docker-compose image name prefixes to
// datastores.
var composeImageDatabases = map[string]string{
	"postgres":      "PostgreSQL",
	"mysql":         "MySQL",
	"mariadb":       "MariaDB",
	"mongo":         "MongoDB",
	"redis":         "Redis",
	"elasticsearch": "Elasticsearch",
	"clickhouse":    "ClickHouse",
}

// containerRegistries are recognized registry hostnames.
var containerRegistries = []string{"ghcr.io", "gcr.io", "quay.io", "registry.gitlab.com", "docker.io"}

// aiConfigFiles are configuration files for AI coding assistants whose
// presence matters for overwrite prompts.
var aiConfigFiles = []string{
	"CLAUDE.md",
	"AGENTS.md",
	"GEMINI.md",
	"CONVENTIONS.md",
	".cursorrules",
	".cursor/rules",
	".windsurfrules",
	".github/copilot-instructions.md",
}

// scriptCommand builds the invocation for a package.json script under the
// detected package manager. Each ecosystem gets an explicit strategy
// instead of prefix guessing.
var scriptCommand = map[string]func(script string) string{
	"npm":  func(s string) string { return "npm run " + s },
	"yarn": func(s string) string { return "yarn " + s },
	"pnpm": func(s string) string { return "pnpm " + s },
	"bun":  func(s string) string { return "bun run " + s },
}

// runScript resolves the command string for a script, defaulting to npm
// when the package manager is unknown.
func runScript(packageManager, script string) string {
	if f, ok := scriptCommand[packageManager]; ok {
		return f(script)
	}
	return scriptCommand["npm"](script)
}
