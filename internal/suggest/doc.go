// Package suggest implements the detection side of spiritcast: a periodic
// sampler that matches utterances against the catalog and offers the
// operator suggestions to accept or reject.
//
// ARCHITECTURE:
//
// While listening, the Engine runs one sampling cycle at a time:
//
//	interval (3-10s) ──► Processing=true ──► delay (1-3s) ──► resolve
//	      ▲                                                     │
//	      └──────────── next interval scheduled ◄───────────────┘
//
// Resolve samples an utterance, runs the Matcher, appends one activity
// record and, on a match, offers a Suggestion to the bounded Queue.
//
// All timing goes through a Scheduler and all randomness through a Rand, so
// tests drive cycles deterministically with ManualScheduler.
//
// Matching is first-match-wins in catalog order: verse references first,
// then songs. There is no scoring; which catalog entry wins is part of the
// contract.
//
// The Engine never touches the projection channel. Accepting a suggestion
// hands it back to the caller, who decides what to publish.
package suggest
