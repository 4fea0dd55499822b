// Package interval provides closed integer spans and normalized sets of
// spans for addressing line-oriented data.
//
// A Span is an inclusive [Start, Stop] range over int64. A Set is an
// always-normalized collection of spans: strictly increasing, pairwise
// disjoint, and non-adjacent, so every membership set has exactly one
// representation. Both round-trip through a whitespace-separated text
// form ("3 7-12 40").
package interval
