// Package mock provides test doubles for the ai.Judge and ai.Embedder interfaces.
//
// Both doubles are safe for concurrent use and count their calls, so tests can
// assert how often the external services were reached:
//
//	judge := mock.NewMockJudge().WithMatch(85, 90)
//	...
//	if judge.CallCount() != 1 { ... }
//
// Default behavior is deterministic: MockEmbedder derives vectors from a hash
// of the text and MockJudge returns a fixed judgment.
package mock
