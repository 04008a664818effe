// Package causal holds the bill-of-materials causal network: nodes arranged in
// design, manufacturing and service layers, linked parent (cause) to child
// (effect).
//
// The store performs no cycle detection. Links to unknown ids are ignored by
// CreateLink and reported by Link. Re-adding an id overwrites the previous node.
package causal
