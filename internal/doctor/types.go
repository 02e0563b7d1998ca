package doctor

// Category groups issues by what is broken.
type Category string

const (
	CategoryRegistry Category = "registry"
	CategoryConfig   Category = "config"
	CategoryTools    Category = "tools"
)

var categoryTitles = map[Category]string{
	CategoryRegistry: "Registry issues",
	CategoryConfig:   "Local configuration issues",
	CategoryTools:    "Missing tools",
}

// Issue is a problem found by [Check].
type Issue struct {
	Category    Category
	Key         string // project root, config file or binary name
	Description string
	Fixable     bool
}

// Report is the outcome of [Check].
type Report struct {
	Projects int // registered projects with an existing root
	Issues   []Issue
}

// Fixable returns the issues --fix can repair.
func (r Report) Fixable() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Fixable {
			out = append(out, is)
		}
	}
	return out
}
