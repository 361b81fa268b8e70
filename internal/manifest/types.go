package manifest

// Task is a Concourse task definition (task.yml).
type Task struct {
	Platform      string         `yaml:"platform" json:"platform"`
	ImageResource map[string]any `yaml:"image_resource,omitempty" json:"image_resource,omitempty"`
	Inputs        []Input        `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Outputs       []Output       `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Params        map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
	Run           *Run           `yaml:"run,omitempty" json:"run,omitempty"`
}

// Input is a named artifact made available to a task.
type Input struct {
	Name     string `yaml:"name" json:"name"`
	Path     string `yaml:"path,omitempty" json:"path,omitempty"`
	Optional bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Output is a named artifact produced by a task.
type Output struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// Run describes the command a task executes.
type Run struct {
	Path string   `yaml:"path" json:"path"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
	Dir  string   `yaml:"dir,omitempty" json:"dir,omitempty"`
}

// Pipeline sections every main pipeline must declare.
const (
	SectionGroups    = "groups"
	SectionJobs      = "jobs"
	SectionResources = "resources"
)

// Pipeline is a decoded Concourse pipeline, kept as its top-level sections.
type Pipeline struct {
	Sections map[string]any
}

// HasSection reports whether the pipeline declares a top-level key.
func (p *Pipeline) HasSection(name string) bool {
	_, ok := p.Sections[name]
	return ok
}

// Jobs returns the job names in declaration order.
func (p *Pipeline) Jobs() []string {
	list, _ := p.Sections[SectionJobs].([]any)
	var names []string
	for _, j := range list {
		if m, ok := j.(map[string]any); ok {
			if name, ok := m["name"].(string); ok {
				names = append(names, name)
			}
		}
	}
	return names
}
