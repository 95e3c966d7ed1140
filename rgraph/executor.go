package rgraph

// Executor replays a CompiledGraph's schedule into a CommandSink: for
// each node, in submission order, it records the barrier placed before
// that node (if any), a label, and the node's execute closures. It does
// not signal any event or timeline.
type Executor struct {
	sink CommandSink
}

// NewExecutor creates an Executor recording into sink.
func NewExecutor(sink CommandSink) *Executor {
	return &Executor{sink: sink}
}

// Execute replays graph's submissions in order. nodeByID must resolve
// every NodeID referenced in graph's schedule, typically the Builder's
// own node registry after Compile.
func (e *Executor) Execute(graph *CompiledGraph, nodeByID func(NodeID) (*Node, bool)) error {
	barrierBefore := make(map[NodeID]Barrier, len(graph.Barriers))
	for _, bar := range graph.Barriers {
		barrierBefore[bar.BeforeNode] = bar
	}

	for _, sub := range graph.Submissions {
		for _, id := range sub.Nodes {
			n, ok := nodeByID(id)
			if !ok {
				continue
			}
			if bar, hasBarrier := barrierBefore[id]; hasBarrier {
				e.sink.RecordBarrier(bar)
			}
			e.sink.RecordLabel(n.Name)
			if n.Execute != nil {
				n.Execute(e.sink)
			}
			for _, sp := range n.Subpasses {
				if sp.Execute != nil {
					sp.Execute(e.sink)
				}
			}
		}
	}
	return nil
}
