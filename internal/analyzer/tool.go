package analyzer

import (
	"sync"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// externalTool tracks whether an analyzer's executable is installed.
// The lookup happens once per instance.
type externalTool struct {
	name      string
	binary    string
	runner    CommandRunner
	once      sync.Once
	available bool
}

func newExternalTool(name, binary string, runner CommandRunner) *externalTool {
	if runner == nil {
		runner = NewExecRunner()
	}
	return &externalTool{name: name, binary: binary, runner: runner}
}

func (t *externalTool) isAvailable() bool {
	t.once.Do(func() {
		_, err := t.runner.LookPath(t.binary)
		t.available = err == nil
	})
	return t.available
}

func (t *externalTool) unavailable() error {
	return domain.NewAnalyzerUnavailableError(t.name)
}
