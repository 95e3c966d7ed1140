package rgraph

import (
	"sort"

	"github.com/forgelabs/rendercore/track"
)

// Barrier is one synthesized barrier batch inserted before a node runs.
type Barrier struct {
	BeforeNode  NodeID
	Transitions []track.PendingTransition
}

// TransientPlacement is the arena offset a transient resource was
// assigned during aliasing.
type TransientPlacement struct {
	Index  track.TrackerIndex
	Offset uint64
	Size   uint64
}

// Submission is one partition of the compiled schedule, bounded by queue-
// family boundaries.
type Submission struct {
	Nodes        []NodeID
	SignalsValue uint64
}

// CompiledGraph is everything the executor needs to submit a frame's
// recorded work: the stable schedule, barriers synthesized ahead of each
// dependent node, transient memory placements, resolved descriptor
// writes, and the submission partitioning.
type CompiledGraph struct {
	Schedule    []NodeID
	Barriers    []Barrier
	Transients  []TransientPlacement
	Descriptors []ResolvedWrite
	Submissions []Submission
	Capture     *Capture
}

// Capture is a serialized snapshot of a compiled graph, handed to a
// downstream consumer (e.g. a frame-debugger UI) when a capture sink was
// installed.
type Capture struct {
	Nodes       []*Node
	Barriers    []Barrier
	Descriptors []ResolvedWrite
}

type edge struct{ from, to NodeID }

// Compiler turns a Finished Builder's recording into a CompiledGraph.
type Compiler struct {
	captureRequested bool
}

// NewCompiler creates a Compiler. When requestCapture is true, Compile
// attaches a Capture to the result.
func NewCompiler(requestCapture bool) *Compiler {
	return &Compiler{captureRequested: requestCapture}
}

// Compile resolves b's recording into a CompiledGraph. Compile errors are
// fatal for the current frame: the caller should discard any in-progress
// capture and proceed to the next frame (see SPEC_FULL.md's executor
// failure semantics).
func (c *Compiler) Compile(b *Builder) (*CompiledGraph, error) {
	if b.status != BuilderStatusFinished {
		return nil, b.fail(ErrInvalidState, "", "Compile requires a Finished builder")
	}

	nodes := c.orderedNodes(b)

	deps := c.buildDependencies(nodes)
	schedule := c.schedule(nodes, deps)
	barriers := c.synthesizeBarriers(nodes, schedule)
	transients := c.aliasTransients(nodes)
	descriptors := c.resolveDescriptors(b, nodes)
	submissions := c.partition(schedule)

	b.status = BuilderStatusConsumed

	result := &CompiledGraph{
		Schedule:    schedule,
		Barriers:    barriers,
		Transients:  transients,
		Descriptors: descriptors,
		Submissions: submissions,
	}
	if c.captureRequested {
		result.Capture = &Capture{Nodes: nodes, Barriers: barriers, Descriptors: descriptors}
	}
	return result, nil
}

// orderedNodes returns every recorded node sorted by record index, the
// natural "submission hint" order the spec describes.
func (c *Compiler) orderedNodes(b *Builder) []*Node {
	var nodes []*Node
	b.nodes.ForEach(func(_ NodeID, n *Node) bool {
		nodes = append(nodes, n)
		return true
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].RecordIndex < nodes[j].RecordIndex })
	return nodes
}

// buildDependencies implements step 2: for each subresource, walk nodes
// in record order, tracking a last-writer and readers-since-last-writer
// set. A new writer gets edges from every prior reader and the prior
// writer; a new reader gets an edge from the prior writer.
func (c *Compiler) buildDependencies(nodes []*Node) []edge {
	type subresourceState struct {
		lastWriter NodeID
		hasWriter  bool
		readers    []NodeID
	}
	states := make(map[track.TrackerIndex]*subresourceState)
	var edges []edge

	for _, n := range nodes {
		for _, a := range n.Accesses {
			st, ok := states[a.Index]
			if !ok {
				st = &subresourceState{}
				states[a.Index] = st
			}

			isWrite := !a.Kind.IsReadOnly()
			if isWrite {
				if st.hasWriter {
					edges = append(edges, edge{from: st.lastWriter, to: n.ID})
				}
				for _, r := range st.readers {
					edges = append(edges, edge{from: r, to: n.ID})
				}
				st.lastWriter = n.ID
				st.hasWriter = true
				st.readers = st.readers[:0]
			} else {
				if st.hasWriter {
					edges = append(edges, edge{from: st.lastWriter, to: n.ID})
				}
				st.readers = append(st.readers, n.ID)
			}
		}
	}
	return edges
}

// schedule implements step 3: a topological order stable with respect to
// record order, ties broken by record index, for determinism across runs.
func (c *Compiler) schedule(nodes []*Node, deps []edge) []NodeID {
	indexByID := make(map[NodeID]int, len(nodes))
	for i, n := range nodes {
		indexByID[n.ID] = i
	}

	inDegree := make([]int, len(nodes))
	adjacency := make([][]int, len(nodes))
	for _, e := range deps {
		fi, fok := indexByID[e.from]
		ti, tok := indexByID[e.to]
		if !fok || !tok {
			continue
		}
		adjacency[fi] = append(adjacency[fi], ti)
		inDegree[ti]++
	}

	ready := make([]int, 0, len(nodes))
	for i := range nodes {
		if inDegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	var result []NodeID
	visited := make([]bool, len(nodes))
	for len(ready) > 0 {
		sort.Ints(ready) // record-index order since nodes is already sorted
		next := ready[0]
		ready = ready[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		result = append(result, nodes[next].ID)

		for _, to := range adjacency[next] {
			inDegree[to]--
			if inDegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}
	return result
}

// synthesizeBarriers implements step 4: walking the schedule, merge each
// node's accesses into a running Tracker and collect a single combined
// barrier batch before each node that needed one.
func (c *Compiler) synthesizeBarriers(nodes []*Node, schedule []NodeID) []Barrier {
	byID := make(map[NodeID]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	tracker := track.NewTracker()
	var barriers []Barrier

	for _, id := range schedule {
		n := byID[id]
		scope := track.NewUsageScope()
		for _, a := range n.Accesses {
			scope.SetUsage(a.Index, a.Kind, a.StageMask)
		}
		transitions := tracker.Merge(scope)
		if len(transitions) > 0 {
			barriers = append(barriers, Barrier{BeforeNode: id, Transitions: transitions})
		}
	}
	return barriers
}

// aliasTransients implements step 5: a greedy first-fit-decreasing bin
// packer. Transients are sorted by live-range span, longest first, as a
// stand-in for size (the graph does not carry a GPU byte size directly),
// and each is assigned the lowest offset whose
// occupancy does not overlap its live range with anything already placed
// there.
func (c *Compiler) aliasTransients(nodes []*Node) []TransientPlacement {
	liveRange := make(map[track.TrackerIndex][2]int) // [first, last] record index
	for _, n := range nodes {
		for _, a := range n.Accesses {
			r, ok := liveRange[a.Index]
			if !ok {
				liveRange[a.Index] = [2]int{n.RecordIndex, n.RecordIndex}
				continue
			}
			if n.RecordIndex < r[0] {
				r[0] = n.RecordIndex
			}
			if n.RecordIndex > r[1] {
				r[1] = n.RecordIndex
			}
			liveRange[a.Index] = r
		}
	}

	indices := make([]track.TrackerIndex, 0, len(liveRange))
	for idx := range liveRange {
		indices = append(indices, idx)
	}
	// Sort by live-range span descending (stand-in for size-descending,
	// since larger-lived resources are packed first).
	sort.Slice(indices, func(i, j int) bool {
		si := liveRange[indices[i]]
		sj := liveRange[indices[j]]
		spanI := si[1] - si[0]
		spanJ := sj[1] - sj[0]
		if spanI != spanJ {
			return spanI > spanJ
		}
		return indices[i] < indices[j]
	})

	type placed struct {
		offset     uint64
		start, end int
	}
	var arena []placed
	var placements []TransientPlacement

	const regionSize = uint64(1)
	for _, idx := range indices {
		r := liveRange[idx]
		offset := uint64(0)
		for {
			overlaps := false
			for _, p := range arena {
				if p.offset != offset {
					continue
				}
				if r[0] <= p.end && p.start <= r[1] {
					overlaps = true
					break
				}
			}
			if !overlaps {
				break
			}
			offset += regionSize
		}
		arena = append(arena, placed{offset: offset, start: r[0], end: r[1]})
		placements = append(placements, TransientPlacement{Index: idx, Offset: offset, Size: regionSize})
	}
	return placements
}

// resolveDescriptors implements step 6: resolve every bound Descriptor
// Set State into immutable descriptor writes.
func (c *Compiler) resolveDescriptors(b *Builder, nodes []*Node) []ResolvedWrite {
	seen := make(map[DescriptorSetID]bool)
	var writes []ResolvedWrite
	for _, n := range nodes {
		for _, bs := range n.Bindings {
			if seen[bs.Set] {
				continue
			}
			seen[bs.Set] = true
			set, err := b.sets.Get(bs.Set)
			if err != nil {
				continue
			}
			for i, bind := range set.Bindings {
				if bind.Kind == BindingSampler {
					continue
				}
				writes = append(writes, ResolvedWrite{Set: bs.Set, Binding: i, View: bind.View})
			}
		}
	}
	return writes
}

// partition implements step 7: partition the schedule into submissions at
// queue-family boundaries. This module targets a single graphics/compute
// queue family, so the whole schedule is one submission; multi-queue
// partitioning is a natural extension point once a second queue family is
// modeled in package collab.
func (c *Compiler) partition(schedule []NodeID) []Submission {
	if len(schedule) == 0 {
		return nil
	}
	return []Submission{{Nodes: schedule, SignalsValue: 1}}
}
