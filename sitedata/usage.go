package sitedata

import (
	"errors"
	"sync"
)

// ToolName identifies one of the public AI and interactive tools.
type ToolName string

const (
	StrategyGenerator       ToolName = "strategyGenerator"
	WebsiteAnalyzer         ToolName = "websiteAnalyzer"
	AdCopyGenerator         ToolName = "adCopyGenerator"
	SocialPostGenerator     ToolName = "socialPostGenerator"
	BlogIdeaGenerator       ToolName = "blogIdeaGenerator"
	KeywordClusterGenerator ToolName = "keywordClusterGenerator"
	ROICalculator           ToolName = "roiCalculator"
	AuraSynthesizer         ToolName = "auraSynthesizer"
	BrandSonifier           ToolName = "brandSonifier"
)

// ToolNames lists every tracked tool in display order.
var ToolNames = []ToolName{
	StrategyGenerator,
	WebsiteAnalyzer,
	AdCopyGenerator,
	SocialPostGenerator,
	BlogIdeaGenerator,
	KeywordClusterGenerator,
	ROICalculator,
	AuraSynthesizer,
	BrandSonifier,
}

// ErrUnknownTool is returned for a tool name outside ToolNames.
var ErrUnknownTool = errors.New("sitedata: unknown tool")

// ToolCount is the usage count of one tool.
type ToolCount struct {
	Tool  ToolName
	Count int
}

// usageCounters are session counters: they only grow and are never persisted.
type usageCounters struct {
	mu     sync.Mutex
	counts map[ToolName]int
}

func newUsageCounters() *usageCounters {
	c := &usageCounters{counts: make(map[ToolName]int, len(ToolNames))}
	for _, t := range ToolNames {
		c.counts[t] = 0
	}
	return c
}

// LogToolUsage increments the usage counter of name.
func (s *Store) LogToolUsage(name ToolName) error {
	s.usage.mu.Lock()
	if _, ok := s.usage.counts[name]; !ok {
		s.usage.mu.Unlock()
		return ErrUnknownTool
	}
	s.usage.counts[name]++
	s.usage.mu.Unlock()

	if s.metrics != nil {
		s.metrics.toolUsage.WithLabelValues(string(name)).Inc()
	}
	return nil
}

// ToolUsage returns the counters in ToolNames order.
func (s *Store) ToolUsage() []ToolCount {
	s.usage.mu.Lock()
	defer s.usage.mu.Unlock()
	out := make([]ToolCount, 0, len(ToolNames))
	for _, t := range ToolNames {
		out = append(out, ToolCount{Tool: t, Count: s.usage.counts[t]})
	}
	return out
}
