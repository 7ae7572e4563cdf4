// internal/engine/extract/dictionaries.go
package extract

// knownSkills is the canonical skill vocabulary scanned for in résumé and
// job text. Keys are canonical names, values are additional surface forms.
var knownSkills = map[string][]string{
	"go":         {"golang"},
	"python":     {},
	"java":       {},
	"javascript": {"js", "ecmascript"},
	"typescript": {"ts"},
	"c++":        {"cpp"},
	"c#":         {"csharp", ".net"},
	"ruby":       {"rails", "ruby on rails"},
	"php":        {},
	"rust":       {},
	"kotlin":     {},
	"swift":      {},
	"sql":        {"postgresql", "postgres", "mysql", "oracle"},
	"nosql":      {"mongodb", "cassandra", "dynamodb"},
	"redis":      {},
	"kafka":      {},
	"rabbitmq":   {},
	"docker":     {"containers"},
	"kubernetes": {"k8s"},
	"terraform":  {},
	"aws":        {"amazon web services"},
	"gcp":        {"google cloud"},
	"azure":      {},
	"react":      {"reactjs", "react.js"},
	"angular":    {},
	"vue":        {"vuejs", "vue.js"},
	"node":       {"nodejs", "node.js"},
	"graphql":    {},
	"rest":       {"restful"},
	"grpc":       {},
	"ci-cd":      {"ci/cd", "jenkins", "github actions", "gitlab ci"},
	"linux":      {"unix"},
	"git":        {},
	"machine learning": {"ml", "deep learning"},
	"data analysis":    {"analytics", "data science"},
	"agile":            {"scrum", "kanban"},
	"project management": {"pmp"},
	"communication":      {},
	"leadership":         {"mentoring", "team lead"},
	"testing":            {"qa", "unit testing", "tdd"},
	"security":           {"infosec", "appsec"},
	"excel":              {"spreadsheets"},
	"salesforce":         {},
	"marketing":          {"seo", "sem"},
	"accounting":         {"bookkeeping"},
	"sales":              {"business development"},
	"customer service":   {"customer support"},
	"nursing":            {},
	"teaching":           {"curriculum"},
}

// knownIndustries maps canonical industry names to surface forms.
var knownIndustries = map[string][]string{
	"technology":    {"software", "tech", "saas", "it services"},
	"finance":       {"banking", "fintech", "investment", "insurance"},
	"healthcare":    {"medical", "hospital", "pharma", "biotech"},
	"retail":        {"e-commerce", "ecommerce", "consumer goods"},
	"manufacturing": {"industrial", "automotive", "aerospace"},
	"education":     {"edtech", "university", "school"},
	"media":         {"entertainment", "publishing", "advertising"},
	"energy":        {"oil", "gas", "utilities", "renewables"},
	"government":    {"public sector", "defense", "nonprofit"},
	"logistics":     {"transportation", "supply chain", "shipping"},
	"hospitality":   {"travel", "restaurant", "hotel"},
	"real estate":   {"construction", "property"},
}

// adjacentIndustries lists industries close enough to earn partial credit
// when no exact industry match exists.
var adjacentIndustries = map[string][]string{
	"technology":    {"finance", "media", "education"},
	"finance":       {"technology", "real estate"},
	"healthcare":    {"education", "government"},
	"retail":        {"logistics", "media", "hospitality"},
	"manufacturing": {"logistics", "energy"},
	"education":     {"technology", "healthcare", "government"},
	"media":         {"technology", "retail"},
	"energy":        {"manufacturing", "government"},
	"government":    {"education", "healthcare", "energy"},
	"logistics":     {"retail", "manufacturing"},
	"hospitality":   {"retail"},
	"real estate":   {"finance"},
}

// seniorityKeywords maps surface forms to seniority labels, checked in
// order from most to least senior so "senior staff engineer" resolves high.
var seniorityKeywords = []struct {
	label    string
	patterns []string
}{
	{"principal", []string{"principal", "distinguished", "fellow", "chief", "vp ", "vice president", "director"}},
	{"lead", []string{"lead", "head of", "manager", "staff engineer", "architect"}},
	{"senior", []string{"senior", "sr.", "sr "}},
	{"mid", []string{"mid-level", "mid level", "intermediate"}},
	{"junior", []string{"junior", "jr.", "jr ", "entry level", "entry-level", "intern", "graduate", "trainee"}},
}

// educationKeywords maps surface forms to education labels, most advanced
// first.
var educationKeywords = []struct {
	label    string
	patterns []string
}{
	{"doctorate", []string{"phd", "ph.d", "doctorate", "doctoral", "md ", "m.d."}},
	{"master", []string{"master", "msc", "m.s.", "mba", "m.a.", "meng"}},
	{"bachelor", []string{"bachelor", "bsc", "b.s.", "b.a.", "ba ", "bs ", "beng", "undergraduate degree"}},
	{"associate", []string{"associate degree", "associate's", "a.a.", "a.s."}},
	{"high_school", []string{"high school", "ged", "secondary school", "diploma"}},
}

// stopwords excluded from keyword-density tokens. Short function words and
// job-posting boilerplate.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "you": true,
	"are": true, "our": true, "will": true, "your": true, "this": true,
	"that": true, "have": true, "has": true, "from": true, "about": true,
	"who": true, "what": true, "their": true, "they": true, "them": true,
	"was": true, "were": true, "been": true, "being": true, "but": true,
	"not": true, "all": true, "can": true, "may": true, "should": true,
	"would": true, "could": true, "into": true, "than": true, "then": true,
	"also": true, "more": true, "most": true, "other": true, "such": true,
	"when": true, "where": true, "which": true, "while": true, "these": true,
	"those": true, "there": true, "here": true, "over": true, "under": true,
	"per": true, "via": true, "etc": true, "using": true, "within": true,
	"across": true, "including": true, "ability": true, "able": true,
	"work": true, "working": true, "team": true, "role": true, "years": true,
	"year": true, "experience": true, "required": true, "preferred": true,
	"must": true, "plus": true, "strong": true, "excellent": true,
	"candidate": true, "candidates": true, "position": true, "job": true,
	"company": true, "looking": true, "join": true, "responsibilities": true,
	"requirements": true, "qualifications": true, "benefits": true,
	"opportunity": true, "opportunities": true, "skills": true,
	"knowledge": true, "familiarity": true, "understanding": true,
}
