// Package analysis runs the batch pipeline: documents are extracted in
// parallel, filtered to candidate questions in document order, clustered,
// and the resulting snapshot is persisted.
//
// Per-document failures are isolated. They are recorded in the batch report
// and only escalate when no document produced usable text. A batch without a
// single candidate question returns core.ErrNoQuestionsFound and never
// touches the result store.
package analysis
