// Package redact finds credential-like values in source text and masks them
// before the text is copied into generated documentation.
package redact

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

type Pattern struct {
	Name     string
	Regex    string
	Severity string
}

type Config struct {
	EntropyThreshold float64
	MinTokenLength   int
	Patterns         []Pattern
}

// Finding is one detected value. Line and Column are 1-based; Column counts
// bytes.
type Finding struct {
	Kind       string
	Severity   string
	Value      string
	Entropy    float64
	Confidence float64
	Line       int
	Column     int
}

type rule struct {
	name     string
	severity string
	re       *regexp.Regexp
}

type Redactor struct {
	minEntropy float64
	minLength  int
	rules      []rule
}

var builtInPatterns = []Pattern{
	{Name: "aws-access-key-id", Severity: "high", Regex: `\bAKIA[0-9A-Z]{16}\b`},
	{Name: "github-pat", Severity: "high", Regex: `\bghp_[A-Za-z0-9]{36}\b`},
	{Name: "github-fine-grained-pat", Severity: "high", Regex: `\bgithub_pat_[A-Za-z0-9_]{82}\b`},
	{Name: "stripe-live-secret", Severity: "high", Regex: `\bsk_live_[A-Za-z0-9]{16,}\b`},
	{Name: "slack-token", Severity: "high", Regex: `\bxox[baprs]-[A-Za-z0-9-]{10,}\b`},
	{Name: "convex-deploy-key", Severity: "high", Regex: `\b(?:prod|dev|preview):[a-z0-9-]+\|[A-Za-z0-9=]{40,}`},
	{Name: "private-key-block", Severity: "critical", Regex: `-----BEGIN (?:RSA |EC |DSA |OPENSSH |PGP )?PRIVATE KEY-----`},
}

var (
	// sensitiveName has no word boundaries so camelCase names like apiKey or
	// stripeSecret match.
	sensitiveName = regexp.MustCompile(`(?i)(password|passwd|pwd|secret|api[_-]?key|token|access[_-]?key|private[_-]?key|client[_-]?secret)`)
	tokenChars    = regexp.MustCompile(`^[A-Za-z0-9_\-+=:/.]+$`)

	placeholderWords = []string{"example", "sample", "dummy", "placeholder", "changeme", "notasecret", "test"}
)

func New(cfg Config) (*Redactor, error) {
	r := &Redactor{minEntropy: cfg.EntropyThreshold, minLength: cfg.MinTokenLength}
	if r.minEntropy <= 0 {
		r.minEntropy = 4.0
	}
	if r.minLength <= 0 {
		r.minLength = 20
	}

	all := append(append([]Pattern(nil), builtInPatterns...), cfg.Patterns...)
	for _, p := range all {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("redact pattern name must not be empty")
		}
		if strings.TrimSpace(p.Regex) == "" {
			return nil, fmt.Errorf("redact pattern %q regex must not be empty", name)
		}
		re, err := regexp.Compile(strings.TrimSpace(p.Regex))
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", name, err)
		}
		severity := strings.ToLower(strings.TrimSpace(p.Severity))
		if severity == "" {
			severity = "medium"
		}
		r.rules = append(r.rules, rule{name: name, severity: severity, re: re})
	}
	return r, nil
}

type findingKey struct {
	offset int
	value  string
}

// Detect returns the findings in text ordered by position. A value found by
// several detectors at the same offset is reported once, by the most
// confident one.
func (r *Redactor) Detect(text string) []Finding {
	if text == "" {
		return nil
	}

	found := make(map[findingKey]Finding)
	add := func(offset int, f Finding) {
		key := findingKey{offset: offset, value: f.Value}
		if prev, ok := found[key]; ok && prev.Confidence >= f.Confidence {
			return
		}
		f.Line, f.Column = position(text, offset)
		found[key] = f
	}

	for _, rl := range r.rules {
		for _, loc := range rl.re.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			if isPlaceholder(value) {
				continue
			}
			add(loc[0], Finding{
				Kind:       rl.name,
				Severity:   rl.severity,
				Value:      value,
				Entropy:    entropy(value),
				Confidence: 0.99,
			})
		}
	}

	lineStart := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		sensitive := sensitiveName.MatchString(line)
		for _, lit := range quotedLiterals(line) {
			if f, ok := r.judgeLiteral(lit, sensitive); ok {
				add(lineStart+lit.start, f)
			}
		}
		lineStart += len(line)
	}

	if len(found) == 0 {
		return nil
	}
	keys := make([]findingKey, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].offset != keys[j].offset {
			return keys[i].offset < keys[j].offset
		}
		return found[keys[i]].Kind < found[keys[j]].Kind
	})
	out := make([]Finding, 0, len(keys))
	for _, k := range keys {
		out = append(out, found[k])
	}
	return out
}

// judgeLiteral decides whether one quoted literal is a credential. On a line
// that names a secret the bar is lower; elsewhere only token-shaped,
// high-entropy strings qualify.
func (r *Redactor) judgeLiteral(lit literal, sensitive bool) (Finding, bool) {
	value := lit.value
	if len(value) < r.minLength || isPlaceholder(value) {
		return Finding{}, false
	}
	bits := entropy(value)

	if sensitive && !strings.Contains(value, "${") && !strings.Contains(value, " ") && bits >= r.minEntropy*0.8 {
		confidence := 0.70
		if bits >= r.minEntropy {
			confidence = 0.85
		}
		return Finding{Kind: "sensitive-assignment", Severity: "medium", Value: value, Entropy: bits, Confidence: confidence}, true
	}

	if lit.quote == '`' || bits < r.minEntropy || !tokenChars.MatchString(value) || isPathLike(value) {
		return Finding{}, false
	}
	var letter, digit bool
	for _, c := range value {
		letter = letter || unicode.IsLetter(c)
		digit = digit || unicode.IsDigit(c)
	}
	if !letter || !digit {
		return Finding{}, false
	}
	return Finding{Kind: "high-entropy-string", Severity: "low", Value: value, Entropy: bits, Confidence: 0.6}, true
}

// Redact replaces every detected value in text with a placeholder naming its
// kind. Every occurrence of a detected value is replaced, including ones the
// detectors did not flag on their own.
func (r *Redactor) Redact(text string) (string, []Finding) {
	findings := r.Detect(text)
	if len(findings) == 0 {
		return text, nil
	}

	kinds := make(map[string]string, len(findings))
	values := make([]string, 0, len(findings))
	for _, f := range findings {
		if _, ok := kinds[f.Value]; ok {
			continue
		}
		kinds[f.Value] = f.Kind
		values = append(values, f.Value)
	}
	// Longer values first so a value containing another is replaced whole.
	sort.Slice(values, func(i, j int) bool { return len(values[i]) > len(values[j]) })

	pairs := make([]string, 0, len(values)*2)
	for _, v := range values {
		pairs = append(pairs, v, Placeholder(kinds[v]))
	}
	return strings.NewReplacer(pairs...).Replace(text), findings
}

// Placeholder is the text substituted for a redacted value.
func Placeholder(kind string) string {
	return "[REDACTED:" + kind + "]"
}

// Mask shortens a value for logging: short values become asterisks, longer
// ones keep four characters at each end.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + "..." + value[len(value)-4:]
}

type literal struct {
	quote byte
	start int
	value string
}

// quotedLiterals returns the contents of '...', "..." and `...` literals on
// one line. Escapes are not interpreted; a quote without a partner on the
// same line is skipped.
func quotedLiterals(line string) []literal {
	var out []literal
	for i := 0; i < len(line); i++ {
		q := line[i]
		if q != '"' && q != '\'' && q != '`' {
			continue
		}
		end := strings.IndexAny(line[i+1:], string(q)+"\r\n")
		if end < 0 || line[i+1+end] != q {
			continue
		}
		if end > 0 {
			out = append(out, literal{quote: q, start: i + 1, value: line[i+1 : i+1+end]})
		}
		i += end + 1
	}
	return out
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, w := range placeholderWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// isPathLike rejects import specifiers and URLs.
func isPathLike(value string) bool {
	for _, prefix := range []string{"./", "../", "/", "@"} {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return strings.Contains(value, "://")
}

// entropy is the Shannon entropy of value in bits per character.
func entropy(value string) float64 {
	counts := make(map[rune]int)
	total := 0
	for _, c := range value {
		counts[c]++
		total++
	}
	var bits float64
	for _, n := range counts {
		p := float64(n) / float64(total)
		bits -= p * math.Log2(p)
	}
	return bits
}

func position(text string, offset int) (line, column int) {
	before := text[:offset]
	return strings.Count(before, "\n") + 1, offset - strings.LastIndexByte(before, '\n')
}
