package coinscrape

// TaskStatus is the state of a single fetch+extract unit of work.
type TaskStatus int

// Task states.
const (
	TaskPending TaskStatus = iota
	TaskSucceeded
	TaskFailed
)

// String returns a lower case name for the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskSucceeded:
		return "succeeded"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchTask describes the work for one symbol in a batch.
type FetchTask struct {
	ID       string
	Position int
	Symbol   string
	URL      string
	Mode     FetchMode
	Status   TaskStatus
}

// Outcome is the result of one task: either Value or Err is meaningful,
// depending on Task.Status.
type Outcome[T any] struct {
	Task  FetchTask
	Value T
	Err   error
}

// BatchResult holds exactly one outcome per requested symbol.
type BatchResult[T any] struct {
	ID       string
	Outcomes []Outcome[T]
}

// Succeeded returns the values of all successful outcomes.
func (b *BatchResult[T]) Succeeded() []T {
	var values []T
	for _, o := range b.Outcomes {
		if o.Task.Status == TaskSucceeded {
			values = append(values, o.Value)
		}
	}
	return values
}

// Failed returns all failed outcomes.
func (b *BatchResult[T]) Failed() []Outcome[T] {
	var failed []Outcome[T]
	for _, o := range b.Outcomes {
		if o.Task.Status == TaskFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Progress reports progress while a batch runs.
type Progress struct {
	Symbol    string
	Completed int
	Total     int
	Error     error
}

// ProgressFunc is called as tasks complete. Calls are sequential.
type ProgressFunc func(Progress)
