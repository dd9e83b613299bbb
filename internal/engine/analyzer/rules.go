package analyzer

import "strings"

// Every heuristic below is an ordered table. Evaluation order is the table
// order and each row fires at most once per input.

type domainRule struct {
	icon   string
	label  string
	detail string
	match  func(path string) bool
}

var domainRules = []domainRule{
	{
		icon:   "📊",
		label:  "Database Schema Definition",
		detail: "Defines data models and table structures",
		match:  func(p string) bool { return strings.Contains(p, "schema.ts") },
	},
	{
		icon:   "🗄️",
		label:  "State Management Store",
		detail: "Manages application state using Zustand/Redux",
		match:  lowerContainsAny("store"),
	},
	{
		icon:   "🎣",
		label:  "Custom React Hook",
		detail: "Reusable logic for React components",
		match:  lowerContainsAny("hook"),
	},
	{
		icon:   "🔒",
		label:  "Middleware",
		detail: "Intercepts requests for authentication/logging",
		match:  lowerContainsAny("middleware"),
	},
	{
		icon:   "🛣️",
		label:  "API Route Handler",
		detail: "Handles HTTP requests and responses",
		match:  func(p string) bool { return strings.Contains(p, "route.ts") },
	},
	{
		icon:   "🔧",
		label:  "Utility Functions",
		detail: "Helper functions and common utilities",
		match:  lowerContainsAny("utils", "helper"),
	},
	{
		icon:   "⚙️",
		label:  "Business Logic",
		detail: "Core application functionality",
		match:  containsAny("collaboration", "session", "file", "folder"),
	},
}

type technologyRule struct {
	icon  string
	label string
	match func(text string) bool
}

var technologyRules = []technologyRule{
	{icon: "🔷", label: "Uses Convex backend framework", match: containsAny("convex")},
	{icon: "🔐", label: "Integrates Clerk authentication", match: lowerContainsAny("clerk")},
	{icon: "📊", label: "Uses Zustand for state management", match: lowerContainsAny("zustand")},
	{icon: "📝", label: "Integrates Monaco code editor", match: lowerContainsAny("monaco")},
}

// unitSubject is what an observation rule inspects.
type unitSubject struct {
	name  string
	text  string
	lower string
}

type observationRule struct {
	id    string
	text  string
	match func(u unitSubject) bool
}

var observationRules = []observationRule{
	{
		id:    "db-mutation",
		text:  "Performs database mutations (create/update/delete operations)",
		match: lowerHas("usemutation", "mutation("),
	},
	{
		id:    "db-query",
		text:  "Fetches data from the database",
		match: lowerHas("usequery", "query("),
	},
	{
		id:    "backend-action",
		text:  "Executes backend actions",
		match: lowerHas("useaction", "action("),
	},
	{
		id:    "http",
		text:  "Makes HTTP/API requests",
		match: lowerHas("fetch(", "axios"),
	},
	{
		id:    "state",
		text:  "Manages component state",
		match: lowerHas("usestate"),
	},
	{
		id:    "effect",
		text:  "Handles side effects and lifecycle events",
		match: lowerHas("useeffect"),
	},
	{
		id:    "ref",
		text:  "Uses refs for DOM access or mutable values",
		match: lowerHas("useref"),
	},
	{
		id:    "timer",
		text:  "Uses timers for delayed/repeated execution",
		match: lowerHas("setinterval", "settimeout"),
	},
	{
		id:   "error-handling",
		text: "Includes error handling",
		match: func(u unitSubject) bool {
			return strings.Contains(u.lower, "try") && strings.Contains(u.lower, "catch")
		},
	},
	{
		id:   "returns",
		text: "Returns data/object/JSX",
		match: func(u unitSubject) bool {
			return strings.Contains(u.lower, "return") &&
				(strings.Contains(u.lower, "return {") || strings.Contains(u.lower, "return("))
		},
	},
	{
		id:   "array-transform",
		text: "Transforms/processes data arrays",
		match: func(u unitSubject) bool {
			return containsAnyOf(u.text, ".map(", ".filter(", ".reduce(")
		},
	},
	{
		id:    "validation",
		text:  "Performs validation checks",
		match: lowerHas("validate", "check", "verify"),
	},
	{
		id:   "events",
		text: "Handles user events/interactions",
		match: func(u unitSubject) bool {
			return containsAnyOf(u.lower, "onclick", "onchange", "onsubmit") ||
				strings.Contains(strings.ToLower(u.name), "handle")
		},
	},
}

// lineRule is a predicate over one trimmed source line.
type lineRule struct {
	id    string
	match func(line string) bool
}

// keepRules is the allow-list of structural lines the partitioner retains.
var keepRules = []lineRule{
	{"import", hasPrefix("import ")},
	{"export", hasPrefix("export ")},
	{"type", hasPrefix("type ")},
	{"interface", hasPrefix("interface ")},
	{"const-init", func(s string) bool {
		return strings.HasPrefix(s, "const ") && strings.Contains(s, "=") && !strings.Contains(s, "className")
	}},
	{"let", hasPrefix("let ")},
	{"var", hasPrefix("var ")},
	{"function", hasPrefix("function ", "async function")},
	{"state-branch", func(s string) bool {
		return strings.Contains(s, "useState") && containsAnyOf(s, "?", "if", "||")
	}},
	{"data-hooks", containsAny("useEffect", "useMutation", "useQuery", "useAction", "useCallback", "useMemo")},
	{"ref-branch", func(s string) bool {
		return strings.Contains(s, "useRef") && containsAnyOf(s, "?", "if")
	}},
	{"store", containsAny("create(", "useStore")},
	{"control-flow", hasPrefix("if ", "if(", "else", "for ", "for(", "while ", "switch ", "case ", "try", "catch", "throw")},
	{"api-call", containsAny("fetch(", "axios")},
	{"array-transform", func(s string) bool {
		return (strings.Contains(s, ".map(") && !strings.Contains(s, "children")) ||
			containsAnyOf(s, ".filter(", ".reduce(", ".find(")
	}},
	{"handler", func(s string) bool {
		lower := strings.ToLower(s)
		return containsAnyOf(lower, "const handle", "const on", "function handle")
	}},
	{"comment", func(s string) bool {
		return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*") ||
			strings.HasPrefix(s, "*") || strings.HasSuffix(s, "*/")
	}},
	{"component", func(s string) bool {
		return containsAnyOf(s, "export default function", "export function") ||
			(strings.Contains(s, "export const") && strings.Contains(s, "=>"))
	}},
	{"closing-brace", func(s string) bool { return s == "}" || s == "};" || s == "}," }},
}

// dropRules is the deny-list of presentational lines; it wins over keepRules.
var dropRules = []lineRule{
	{"class-name", containsAny("className=")},
	{"inline-style", func(s string) bool { return strings.Contains(s, "style=") && strings.Contains(s, "{") }},
	{"animation", containsAny("<motion.", "variants=", "initial=", "animate=", "whileHover=")},
	{"bare-div", func(s string) bool {
		return strings.HasPrefix(s, "<div") && !strings.Contains(s, "onClick") && !strings.Contains(s, "onChange")
	}},
}

var markupTags = []string{
	"<div", "<button", "<input", "<span", "<p", "<h1", "<h2", "<h3",
	"<section", "<main", "<header", "<footer",
}

// markupExtensions lists the file kinds that may embed markup; everything
// else bypasses the partitioner.
var markupExtensions = map[string]bool{
	".tsx": true,
	".jsx": true,
	".js":  true,
}

func firstMatch(rules []lineRule, line string) (string, bool) {
	for _, rule := range rules {
		if rule.match(line) {
			return rule.id, true
		}
	}
	return "", false
}

func hasPrefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

func containsAny(needles ...string) func(string) bool {
	return func(s string) bool { return containsAnyOf(s, needles...) }
}

func lowerContainsAny(needles ...string) func(string) bool {
	return func(s string) bool { return containsAnyOf(strings.ToLower(s), needles...) }
}

func lowerHas(needles ...string) func(unitSubject) bool {
	return func(u unitSubject) bool { return containsAnyOf(u.lower, needles...) }
}

func containsAnyOf(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
