package search

import (
	"github.com/zavalabs/prodsearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, mode Mode)
	AfterKeywordSearch(results []*core.SearchResult)
	AfterVectorSearch(results []*core.SearchResult)
	AfterFusion(results []*core.SearchResult)
	AfterRerank(results []*core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Mode)                    {}
func (n *noopMonitor) AfterKeywordSearch(_ []*core.SearchResult) {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.SearchResult)  {}
func (n *noopMonitor) AfterFusion(_ []*core.SearchResult)        {}
func (n *noopMonitor) AfterRerank(_ []*core.SearchResult)        {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)             {}
