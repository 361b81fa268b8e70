package compliance

// Category groups issues in reports.
type Category string

const (
	CategoryDirectory Category = "directory"
	CategoryFile      Category = "file"
	CategoryScript    Category = "script"
	CategoryCommand   Category = "command"
	CategoryOption    Category = "option"
	CategoryPipeline  Category = "pipeline"
	CategoryTask      Category = "task"
	CategoryTest      Category = "test"
)

// Categories returns every category in report order.
func Categories() []Category {
	return []Category{
		CategoryDirectory,
		CategoryFile,
		CategoryScript,
		CategoryCommand,
		CategoryOption,
		CategoryPipeline,
		CategoryTask,
		CategoryTest,
	}
}

// Issue is a single rule violation.
type Issue struct {
	Category Category `json:"category" yaml:"category"`
	Message  string   `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	return i.Message
}
