// Package inference runs Leaky-Noisy-OR belief propagation over a
// causal.Network and summarises the result as mean binary entropy.
//
// Propagation is one-directional: a node reads its parents' beliefs and never
// its children's observations, so evidence at a service node does not raise
// the belief of its design or manufacturing ancestors.
package inference
