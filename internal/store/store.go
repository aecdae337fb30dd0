// Package store implements a graph.Store keeping vertices and edges in insertion order,
// so that a graph of stages is always rendered the same way.
package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dominikbraun/graph"
)

// CustomStore is a graph.Store whose vertex properties can be updated in place.
type CustomStore[K comparable, T any] interface {
	graph.Store[K, T]
	UpdateVertex(k K, options ...func(*graph.VertexProperties)) error
}

type edgeKey[K comparable] struct {
	source, target K
}

// MemoryStore keeps the graph in memory.
type MemoryStore[K comparable, T any] struct {
	vertices         map[K]T
	vertexProperties map[K]*graph.VertexProperties
	vertexOrder      []K

	// outEdges and inEdges index the edges by source and by target.
	outEdges  map[K]map[K]graph.Edge[K]
	inEdges   map[K]map[K]graph.Edge[K]
	edgeOrder []edgeKey[K]

	lock sync.RWMutex
}

// NewMemoryStore creates an empty store.
func NewMemoryStore[K comparable, T any]() *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		vertices:         make(map[K]T),
		vertexProperties: make(map[K]*graph.VertexProperties),
		outEdges:         make(map[K]map[K]graph.Edge[K]),
		inEdges:          make(map[K]map[K]graph.Edge[K]),
	}
}

func (s *MemoryStore[K, T]) AddVertex(k K, t T, p graph.VertexProperties) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; ok {
		return graph.ErrVertexAlreadyExists
	}
	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}

	s.vertices[k] = t
	s.vertexProperties[k] = &p
	s.vertexOrder = append(s.vertexOrder, k)

	return nil
}

// ListVertices returns the vertices in the order they were added.
func (s *MemoryStore[K, T]) ListVertices() ([]K, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return slices.Clone(s.vertexOrder), nil
}

func (s *MemoryStore[K, T]) VertexCount() (int, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return len(s.vertices), nil
}

func (s *MemoryStore[K, T]) Vertex(k K) (T, graph.VertexProperties, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.vertices[k]
	if !ok {
		return v, graph.VertexProperties{}, graph.ErrVertexNotFound
	}

	return v, *s.vertexProperties[k], nil
}

func (s *MemoryStore[K, T]) RemoveVertex(k K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.vertices[k]; !ok {
		return graph.ErrVertexNotFound
	}
	if len(s.inEdges[k]) > 0 || len(s.outEdges[k]) > 0 {
		return graph.ErrVertexHasEdges
	}

	delete(s.inEdges, k)
	delete(s.outEdges, k)
	delete(s.vertices, k)
	delete(s.vertexProperties, k)
	s.vertexOrder = slices.DeleteFunc(s.vertexOrder, func(other K) bool {
		return other == k
	})

	return nil
}

// UpdateVertex applies options to the properties of the vertex k.
func (s *MemoryStore[K, T]) UpdateVertex(k K, options ...func(*graph.VertexProperties)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	properties, ok := s.vertexProperties[k]
	if !ok {
		return graph.ErrVertexNotFound
	}
	for _, opt := range options {
		opt(properties)
	}

	return nil
}

func (s *MemoryStore[K, T]) AddEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash]; !ok {
		s.outEdges[sourceHash] = make(map[K]graph.Edge[K])
	}
	if _, ok := s.inEdges[targetHash]; !ok {
		s.inEdges[targetHash] = make(map[K]graph.Edge[K])
	}
	if _, ok := s.outEdges[sourceHash][targetHash]; !ok {
		s.edgeOrder = append(s.edgeOrder, edgeKey[K]{source: sourceHash, target: targetHash})
	}

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *MemoryStore[K, T]) UpdateEdge(sourceHash, targetHash K, edge graph.Edge[K]) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.outEdges[sourceHash][targetHash]; !ok {
		return graph.ErrEdgeNotFound
	}

	s.outEdges[sourceHash][targetHash] = edge
	s.inEdges[targetHash][sourceHash] = edge

	return nil
}

func (s *MemoryStore[K, T]) RemoveEdge(sourceHash, targetHash K) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.inEdges[targetHash], sourceHash)
	delete(s.outEdges[sourceHash], targetHash)
	s.edgeOrder = slices.DeleteFunc(s.edgeOrder, func(key edgeKey[K]) bool {
		return key.source == sourceHash && key.target == targetHash
	})

	return nil
}

func (s *MemoryStore[K, T]) Edge(sourceHash, targetHash K) (graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	edge, ok := s.outEdges[sourceHash][targetHash]
	if !ok {
		return graph.Edge[K]{}, graph.ErrEdgeNotFound
	}

	return edge, nil
}

// ListEdges returns the edges in the order they were added.
func (s *MemoryStore[K, T]) ListEdges() ([]graph.Edge[K], error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	res := make([]graph.Edge[K], 0, len(s.edgeOrder))
	for _, key := range s.edgeOrder {
		res = append(res, s.outEdges[key.source][key.target])
	}

	return res, nil
}

// CreatesCycle reports whether an edge from source to target would close a cycle.
// It walks the inEdges index instead of building a predecessor map.
func (s *MemoryStore[K, T]) CreatesCycle(source, target K) (bool, error) {
	if _, _, err := s.Vertex(source); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", source, err)
	}
	if _, _, err := s.Vertex(target); err != nil {
		return false, fmt.Errorf("could not get vertex with hash %v: %w", target, err)
	}
	if source == target {
		return true, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	stack := []K{source}
	visited := make(map[K]struct{})
	for len(stack) > 0 {
		currentHash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := visited[currentHash]; ok {
			continue
		}
		// target already leads to source: the new edge would close the loop
		if currentHash == target {
			return true, nil
		}
		visited[currentHash] = struct{}{}
		for adjacency := range s.inEdges[currentHash] {
			stack = append(stack, adjacency)
		}
	}

	return false, nil
}

var _ CustomStore[string, string] = (*MemoryStore[string, string])(nil)
