package cluster

import "github.com/Winter-Soldier02/FreQ/core"

// Monitor provides hooks to observe a clustering run.
type Monitor interface {
	Start(candidates int)
	AfterEmbedding(dimensions int)
	Merged(representative, variant string, similarity float64)
	GroupSealed(group core.QuestionGroup)
	Finish(results core.ResultSet)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ int)                          {}
func (n *noopMonitor) AfterEmbedding(_ int)                 {}
func (n *noopMonitor) Merged(_ string, _ string, _ float64) {}
func (n *noopMonitor) GroupSealed(_ core.QuestionGroup)     {}
func (n *noopMonitor) Finish(_ core.ResultSet)              {}
