package registry

import (
	"sort"
	"strings"

	"github.com/taintgraph/engine/internal/model"
)

// Framework names recognized by WithFrameworks. Unrecognized names are
// ignored rather than rejected — the combinator stays pure and total.
const (
	Flask    = "flask"
	Django   = "django"
	FastAPI  = "fastapi"
	Express  = "express"
	Koa      = "koa"
	Fastify  = "fastify"
)

// sanitizerStems are the generic name-stem matches every registry
// recognizes regardless of explicit sanitizer entries, per the
// built-in sanitizer recognition the engine guarantees at minimum.
var sanitizerStems = []string{"validate", "sanitize", "escape", "clean", "filter_var"}

// RuleRegistry is the external collaborator that contributes
// additional source/sink/sanitizer patterns (e.g. user-authored rule
// files). Its own population is out of scope for this engine; it is
// consumed only through Contribute.
type RuleRegistry interface {
	Contribute() (sources map[string][]string, sinks map[model.PatternCategory][]string, sanitizers []model.Sanitizer)
}

// Registry is the immutable (sources, sinks, sanitizers) triple.
// Sources are bucketed by ecosystem/origin (e.g. "python",
// "javascript", "network", "file_io", "scraping", "env_cli") because
// a source pattern by itself carries no vulnerability category — only
// a sink's category drives classification. Sinks are bucketed by
// vulnerability category.
type Registry struct {
	sources    map[string][]string
	sinks      map[model.PatternCategory][]string
	sanitizers []model.Sanitizer
}

// Sources returns the source pattern buckets. The returned map and
// slices must not be mutated by callers.
func (r Registry) Sources() map[string][]string { return r.sources }

// Sinks returns the sink pattern map, keyed by vulnerability category.
func (r Registry) Sinks() map[model.PatternCategory][]string { return r.sinks }

// Sanitizers returns the configured sanitizer list.
func (r Registry) Sanitizers() []model.Sanitizer { return r.sanitizers }

// FromDefaults builds the built-in registry: request-input sources
// per ecosystem, network I/O, file-I/O-as-input, scraping response
// bodies, and environment/CLI inputs; sql/command/xss/path/ldap/nosql
// sinks.
func FromDefaults() Registry {
	return Registry{
		sources: cloneBuckets(map[string][]string{
			"python": {
				"request.GET", "request.POST", "request.args", "request.form",
				"request.values", "request.json", "request.data", "request.cookies",
				"request.headers", "request.files",
			},
			"javascript": {
				"req.query", "req.body", "req.params", "req.cookies", "req.headers",
			},
			"network": {
				"socket.recv", "conn.Read", "http.Request.Body",
			},
			"file_io": {
				"open", "json.load", "csv.reader", "pandas.read_csv",
				"pandas.read_excel", "yaml.safe_load", "os.ReadFile",
			},
			"scraping": {
				"requests.get", "requests.post", "urllib.request.urlopen",
				"BeautifulSoup", "response.text", "response.content",
			},
			"env_cli": {
				"os.environ", "os.getenv", "sys.argv", "flag.String", "os.Args",
			},
		}),
		sinks: cloneSinkBuckets(map[model.PatternCategory][]string{
			model.CategorySQL: {
				"cursor.execute", "cursor.executemany", "db.query", "connection.execute",
			},
			model.CategoryCommand: {
				"os.system", "subprocess.call", "subprocess.run", "subprocess.Popen",
				"exec.Command", "child_process.exec",
			},
			model.CategoryXSS: {
				"res.send", "res.render", "render_template_string", "innerHTML",
				"dangerouslySetInnerHTML",
			},
			model.CategoryPath: {
				"open", "os.path.join", "send_file", "path.Join", "res.sendFile",
			},
			model.CategoryLDAP: {
				"ldap.search", "ldap3.Connection.search",
			},
			model.CategoryNoSQL: {
				"collection.find", "db.collection", "Model.find",
			},
		}),
		sanitizers: []model.Sanitizer{
			{FunctionName: "sqlalchemy.text", Categories: cats(model.CategorySQL)},
			{FunctionName: "parameterize", Categories: cats(model.CategorySQL)},
			{FunctionName: "html.escape", Categories: cats(model.CategoryXSS)},
			{FunctionName: "markupsafe.escape", Categories: cats(model.CategoryXSS)},
			{FunctionName: "secure_filename", Categories: cats(model.CategoryPath)},
			{FunctionName: "shlex.quote", Categories: cats(model.CategoryCommand)},
			{FunctionName: "pipes.quote", Categories: cats(model.CategoryCommand)},
		},
	}
}

// WithFrameworks returns a new Registry with framework-specific
// patterns layered on top of the receiver. Unknown framework names
// are ignored.
func (r Registry) WithFrameworks(frameworks []string) Registry {
	out := r.clone()
	for _, fw := range frameworks {
		switch strings.ToLower(fw) {
		case Flask:
			out.addSources("python", "request.get_json", "request.view_args")
		case Django:
			out.addSources("python", "request.GET.get", "request.POST.get", "request.body")
		case FastAPI:
			out.addSources("python", "Query", "Path", "Body", "Depends")
		case Express, Koa, Fastify:
			out.addSources("javascript", "req.query", "req.body", "req.params")
			out.addSinks(model.CategoryXSS, "res.send", "res.render", "res.json")
			out.addSinks(model.CategoryPath, "res.sendFile", "res.download")
			out.addSinks(model.CategorySQL, "knex.raw", "sequelize.query", "pool.query", "client.query")
		}
	}
	return out
}

// WithRuleRegistry returns a new Registry whose pattern sets are
// replaced wholesale by those the rule registry contributes. Per
// convention those contributed patterns already fold in the
// equivalent of framework effects, so this does not layer on top of
// the receiver's own sets.
func (r Registry) WithRuleRegistry(rr RuleRegistry) Registry {
	if rr == nil {
		return r.clone()
	}
	sources, sinks, sanitizers := rr.Contribute()
	return Registry{
		sources:    cloneBuckets(sources),
		sinks:      cloneSinkBuckets(sinks),
		sanitizers: append([]model.Sanitizer(nil), sanitizers...),
	}
}

// IsSanitizer reports whether name matches a configured sanitizer, by
// case-insensitive substring match against the sanitizer list for any
// category, or against one of the generic name stems every registry
// recognizes (validate/sanitize/escape/clean/filter_var).
func (r Registry) IsSanitizer(name string) bool {
	lname := strings.ToLower(name)
	for _, s := range r.sanitizers {
		if strings.Contains(lname, strings.ToLower(s.FunctionName)) {
			return true
		}
	}
	for _, stem := range sanitizerStems {
		if strings.Contains(lname, stem) {
			return true
		}
	}
	return false
}

// SanitizerCategories returns the union of categories any matching
// sanitizer entry neutralizes for name. Generic stem matches are
// treated as covering every category, since they carry no explicit
// category list.
func (r Registry) SanitizerCategories(name string) map[model.PatternCategory]struct{} {
	lname := strings.ToLower(name)
	out := map[model.PatternCategory]struct{}{}
	matched := false
	for _, s := range r.sanitizers {
		if strings.Contains(lname, strings.ToLower(s.FunctionName)) {
			matched = true
			for c := range s.Categories {
				out[c] = struct{}{}
			}
		}
	}
	if matched {
		return out
	}
	for _, stem := range sanitizerStems {
		if strings.Contains(lname, stem) {
			return allCategories()
		}
	}
	return out
}

func allCategories() map[model.PatternCategory]struct{} {
	return map[model.PatternCategory]struct{}{
		model.CategorySQL: {}, model.CategoryCommand: {}, model.CategoryXSS: {},
		model.CategoryPath: {}, model.CategoryLDAP: {}, model.CategoryNoSQL: {},
	}
}

func cats(c ...model.PatternCategory) map[model.PatternCategory]struct{} {
	m := make(map[model.PatternCategory]struct{}, len(c))
	for _, cc := range c {
		m[cc] = struct{}{}
	}
	return m
}

func (r Registry) clone() Registry {
	return Registry{
		sources:    cloneBuckets(r.sources),
		sinks:      cloneSinkBuckets(r.sinks),
		sanitizers: append([]model.Sanitizer(nil), r.sanitizers...),
	}
}

func (r *Registry) addSources(bucket string, patterns ...string) {
	existing := map[string]struct{}{}
	for _, p := range r.sources[bucket] {
		existing[p] = struct{}{}
	}
	for _, p := range patterns {
		if _, ok := existing[p]; !ok {
			r.sources[bucket] = append(r.sources[bucket], p)
			existing[p] = struct{}{}
		}
	}
	sort.Strings(r.sources[bucket])
}

func (r *Registry) addSinks(cat model.PatternCategory, patterns ...string) {
	existing := map[string]struct{}{}
	for _, p := range r.sinks[cat] {
		existing[p] = struct{}{}
	}
	for _, p := range patterns {
		if _, ok := existing[p]; !ok {
			r.sinks[cat] = append(r.sinks[cat], p)
			existing[p] = struct{}{}
		}
	}
	sort.Strings(r.sinks[cat])
}

func cloneBuckets(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func cloneSinkBuckets(in map[model.PatternCategory][]string) map[model.PatternCategory][]string {
	out := make(map[model.PatternCategory][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
