package interview

import (
	"fmt"
	"strings"
)

// Icon is the glyph shown on a category card.
type Icon string

const (
	IconCode      Icon = "code"
	IconMonitor   Icon = "monitor"
	IconServer    Icon = "server"
	IconDatabase  Icon = "database"
	IconGlobe     Icon = "globe"
	IconNetwork   Icon = "network"
	IconHardDrive Icon = "hard-drive"
)

// CategoryOption is a topic a user can narrow a session to.
type CategoryOption struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Fields      []Field  `json:"field"`
	Topics      []string `json:"topics"`
	Icon        Icon     `json:"icon"`
}

var (
	feFields  = []Field{FieldFrontend, FieldFullstack}
	beFields  = []Field{FieldBackend, FieldFullstack}
	opsFields = []Field{FieldDevOps}
	allFields = []Field{FieldFrontend, FieldBackend, FieldDevOps, FieldFullstack}
)

var categoryOptions = []CategoryOption{
	{ID: "react", Label: "React", Description: "JSX, hooks, state management", Fields: feFields},
	{ID: "javascript", Label: "JavaScript", Description: "Syntax, async, events", Fields: feFields},
	{ID: "typescript", Label: "TypeScript", Description: "Type system, interfaces", Fields: feFields},
	{ID: "css", Label: "CSS", Description: "Flexbox, Grid, responsive layout", Fields: feFields},
	{ID: "performance", Label: "Performance", Description: "Bundling, caching, rendering", Fields: feFields},

	{ID: "java", Label: "Java", Description: "OOP, collections, streams", Fields: beFields},
	{ID: "spring", Label: "Spring", Description: "IoC, AOP, Boot", Fields: beFields},
	{ID: "nodejs", Label: "Node.js", Description: "Event loop, Express", Fields: beFields},
	{ID: "database", Label: "Database", Description: "SQL, NoSQL, normalization", Fields: beFields},
	{ID: "api", Label: "API Design", Description: "REST, GraphQL, authentication", Fields: beFields, Topics: []string{"API Design", "Authentication"}},
	{ID: "security", Label: "Security", Description: "SQL injection, XSS", Fields: beFields},

	{ID: "docker", Label: "Docker", Description: "Containers, images", Fields: opsFields},
	{ID: "kubernetes", Label: "Kubernetes", Description: "Pods, services, deployments", Fields: opsFields},
	{ID: "aws", Label: "AWS", Description: "EC2, S3, RDS", Fields: opsFields},
	{ID: "cicd", Label: "CI/CD", Description: "Pipelines, automation", Fields: opsFields},
	{ID: "monitoring", Label: "Monitoring", Description: "Logs, metrics, alerts", Fields: opsFields},

	{ID: "network", Label: "Network", Description: "HTTP, TCP/UDP, DNS", Fields: allFields},
	{ID: "datastructure", Label: "Data Structures", Description: "Stacks, queues, trees, hashes", Fields: allFields},
	{ID: "algorithm", Label: "Algorithms", Description: "Sorting, searching, complexity", Fields: allFields},
	{ID: "os", Label: "Operating Systems", Description: "Processes, threads, memory", Fields: allFields, Topics: []string{"Operating Systems", "Memory Management"}},
	{ID: "architecture", Label: "System Architecture", Description: "Microservices, scalability", Fields: []Field{FieldBackend, FieldDevOps, FieldFullstack}, Topics: []string{"System Architecture", "Architecture"}},
}

func init() {
	for i := range categoryOptions {
		opt := &categoryOptions[i]
		if len(opt.Topics) == 0 {
			opt.Topics = []string{opt.Label}
		}
		icon, err := IconOf(opt.ID)
		if err != nil {
			panic(err)
		}
		opt.Icon = icon
	}
}

// IconOf maps a category id to its icon. Every known id has an explicit
// entry; unknown ids are an error rather than a silent fallback.
func IconOf(categoryID string) (Icon, error) {
	switch categoryID {
	case "react", "javascript", "typescript", "java", "performance", "security", "algorithm":
		return IconCode, nil
	case "css", "monitoring":
		return IconMonitor, nil
	case "spring", "nodejs", "docker", "kubernetes", "cicd", "architecture":
		return IconServer, nil
	case "database", "datastructure":
		return IconDatabase, nil
	case "api", "aws":
		return IconGlobe, nil
	case "network":
		return IconNetwork, nil
	case "os":
		return IconHardDrive, nil
	}
	return "", fmt.Errorf("unknown category %q", categoryID)
}

// Categories returns every category option.
func Categories() []CategoryOption {
	out := make([]CategoryOption, len(categoryOptions))
	copy(out, categoryOptions)
	return out
}

// CategoriesFor returns the options offered for a field, in display order.
func CategoriesFor(f Field) []CategoryOption {
	var out []CategoryOption
	for _, opt := range categoryOptions {
		for _, of := range opt.Fields {
			if of == f {
				out = append(out, opt)
				break
			}
		}
	}
	return out
}

// CategoryByID looks up a category option.
func CategoryByID(id string) (CategoryOption, bool) {
	for _, opt := range categoryOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return CategoryOption{}, false
}

// topicSet collects the question categories covered by the given option ids.
// Unknown ids contribute nothing.
func topicSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, id := range ids {
		opt, ok := CategoryByID(id)
		if !ok {
			continue
		}
		for _, t := range opt.Topics {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	return set
}
