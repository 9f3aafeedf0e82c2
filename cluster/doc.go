// Package cluster groups candidate questions that mean the same thing.
//
// Each distinct candidate is embedded once, then a greedy forward scan walks
// the candidates in first-seen order. The first unassigned candidate opens a
// group and absorbs every later unassigned candidate whose cosine similarity
// to it is strictly above the threshold. Groups are never merged afterwards,
// so the result is order dependent and not transitive: a candidate similar to
// two representatives joins whichever group was opened first.
//
// # Usage Example
//
//	c, err := cluster.NewClusterer(provider.Embedder(), cluster.WithThreshold(0.8))
//	if err != nil {
//	    return err
//	}
//	results, err := c.Cluster(ctx, tally.Candidates(), tally.Counts())
package cluster
