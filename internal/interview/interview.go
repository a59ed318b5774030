// Package interview defines the core domain types of the practice app:
// the question catalog, the setup options a user picks from, and the
// selector that turns a setup into an ordered list of questions.
package interview

type Field string

const (
	FieldFrontend  Field = "frontend"
	FieldBackend   Field = "backend"
	FieldDevOps    Field = "devops"
	FieldFullstack Field = "fullstack"
)

func (f Field) Valid() bool {
	switch f {
	case FieldFrontend, FieldBackend, FieldDevOps, FieldFullstack:
		return true
	}
	return false
}

type Experience string

const (
	ExperienceJunior    Experience = "junior"
	ExperienceOneThree  Experience = "1-3years"
	ExperienceThreeFive Experience = "3-5years"
	ExperienceSenior    Experience = "senior"
)

func (e Experience) Valid() bool {
	switch e {
	case ExperienceJunior, ExperienceOneThree, ExperienceThreeFive, ExperienceSenior:
		return true
	}
	return false
}

type CompanyType string

const (
	CompanyStartup CompanyType = "startup"
	CompanySmall   CompanyType = "small"
	CompanyLarge   CompanyType = "large"
	CompanyGlobal  CompanyType = "global"
)

func (c CompanyType) Valid() bool {
	switch c {
	case CompanyStartup, CompanySmall, CompanyLarge, CompanyGlobal:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Label is the badge text shown next to a question.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "Basic"
	case DifficultyMedium:
		return "Intermediate"
	case DifficultyHard:
		return "Advanced"
	}
	return ""
}

// Option is one selectable card on the setup screen.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// DefaultQuestionCount is preselected on the setup screen.
const DefaultQuestionCount = 10

func FieldOptions() []Option {
	return []Option{
		{ID: string(FieldFrontend), Label: "Frontend", Description: "React, Vue, JavaScript, CSS"},
		{ID: string(FieldBackend), Label: "Backend", Description: "Node.js, Java, Python, databases"},
		{ID: string(FieldDevOps), Label: "DevOps", Description: "AWS, Docker, CI/CD"},
		{ID: string(FieldFullstack), Label: "Fullstack", Description: "Frontend + backend"},
	}
}

func ExperienceOptions() []Option {
	return []Option{
		{ID: string(ExperienceJunior), Label: "New grad", Description: "Year 0, fundamentals"},
		{ID: string(ExperienceOneThree), Label: "Junior", Description: "1-3 years, hands-on experience"},
		{ID: string(ExperienceThreeFive), Label: "Mid-level", Description: "3-5 years, deeper concepts"},
		{ID: string(ExperienceSenior), Label: "Lead", Description: "5+ years, architecture and design"},
	}
}

func CompanyTypeOptions() []Option {
	return []Option{
		{ID: string(CompanyStartup), Label: "Startup", Description: "Fast iteration, broad scope"},
		{ID: string(CompanySmall), Label: "Small/medium business", Description: "Stable environment"},
		{ID: string(CompanyLarge), Label: "Enterprise", Description: "Structured processes"},
		{ID: string(CompanyGlobal), Label: "Global company", Description: "International standards"},
	}
}

// Question is a catalog entry. It is never mutated after the catalog loads.
type Question struct {
	ID           string        `json:"id" yaml:"id"`
	Question     string        `json:"question" yaml:"question"`
	Category     string        `json:"category" yaml:"category"`
	Difficulty   Difficulty    `json:"difficulty" yaml:"difficulty"`
	Fields       []Field       `json:"field" yaml:"field"`
	Experience   []Experience  `json:"experience" yaml:"experience"`
	CompanyTypes []CompanyType `json:"companyType" yaml:"companyType"`
}

func (q Question) HasField(f Field) bool {
	for _, v := range q.Fields {
		if v == f {
			return true
		}
	}
	return false
}

func (q Question) HasExperience(e Experience) bool {
	for _, v := range q.Experience {
		if v == e {
			return true
		}
	}
	return false
}

func (q Question) HasCompanyType(c CompanyType) bool {
	for _, v := range q.CompanyTypes {
		if v == c {
			return true
		}
	}
	return false
}

// Matches reports whether q fits the field, experience and company type of cfg.
func (q Question) Matches(cfg Config) bool {
	return q.HasField(cfg.Field) && q.HasExperience(cfg.Experience) && q.HasCompanyType(cfg.CompanyType)
}

// Config is the setup a user submits to start a practice session.
type Config struct {
	Field         Field       `json:"field"`
	Experience    Experience  `json:"experience"`
	CompanyType   CompanyType `json:"companyType"`
	QuestionCount int         `json:"questionCount"`
	Categories    []string    `json:"categories"`
}
