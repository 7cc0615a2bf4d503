package btree

// NodePool owns the nodes of a tree and hands out their IDs.
//
// Nodes refer to each other only by ID, so a parent link is a plain index
// into the pool and never keeps a node alive on its own. Freed IDs are
// reused by later allocations.
type NodePool[T any] struct {
	nodes       []*Node[T] // Indexed by NodeID; slot 0 is the empty sentinel
	freeNodeIDs []NodeID
	live        int
}

// NewNodePool creates a new node pool
func NewNodePool[T any]() *NodePool[T] {
	return &NodePool[T]{
		nodes:       make([]*Node[T], 1),
		freeNodeIDs: make([]NodeID, 0),
	}
}

// Allocate creates an empty populated node with the given parent.
func (p *NodePool[T]) Allocate(parent NodeID) *Node[T] {
	var id NodeID
	if len(p.freeNodeIDs) > 0 {
		id = p.freeNodeIDs[len(p.freeNodeIDs)-1]
		p.freeNodeIDs = p.freeNodeIDs[:len(p.freeNodeIDs)-1]
	} else {
		id = NodeID(len(p.nodes))
		p.nodes = append(p.nodes, nil)
	}

	n := &Node[T]{
		id:       id,
		parent:   parent,
		keys:     make([]T, 0),
		children: make([]NodeID, 0),
	}
	p.nodes[id] = n
	p.live++
	return n
}

// Get returns the node with the given ID. It returns nil, the empty
// variant, for EmptyNode and for IDs that are not live.
func (p *NodePool[T]) Get(id NodeID) *Node[T] {
	if id == EmptyNode || int(id) >= len(p.nodes) {
		return nil
	}
	return p.nodes[id]
}

// Free drops the node and returns its ID to the pool for reuse.
func (p *NodePool[T]) Free(id NodeID) {
	if id == EmptyNode || int(id) >= len(p.nodes) || p.nodes[id] == nil {
		return
	}
	p.nodes[id] = nil
	p.freeNodeIDs = append(p.freeNodeIDs, id)
	p.live--
}

// Reset drops every node.
func (p *NodePool[T]) Reset() {
	p.nodes = make([]*Node[T], 1)
	p.freeNodeIDs = make([]NodeID, 0)
	p.live = 0
}

// Stats returns the number of live nodes and of IDs waiting for reuse.
func (p *NodePool[T]) Stats() (liveNodes int, freeNodeCount int) {
	return p.live, len(p.freeNodeIDs)
}
