// Package redline is the Composition Root for the redline review engine.
//
// It connects the core review logic (Domain Layer) with the package and revision
// adapters using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// A reviewed document is a WordprocessingML package whose main part still carries
// tracked changes. Finishing the review means accepting every change: inserted content
// stays, deleted content goes, and previous formatting is discarded. redline does this
// on package bytes held in memory; where those bytes come from is the host's concern.
//
// Features:
//
//   - **Byte In, Byte Out**: The engine never touches storage. Untouched entries keep their exact bytes.
//   - **Complete Acceptance**: Insertions, deletions, property changes, deleted paragraph marks and deleted rows.
//   - **Strict And Transitional**: Both OOXML namespaces are recognized.
//   - **Fail Whole**: Malformed revision markup fails the review; no partial output is produced.
//   - **Hosts**: The `redline` CLI adds staging, batch runs and a watch mode over local paths and URLs.
//
// Usage:
//
//	text, reviewed, err := redline.FinishReview(data)
//
//	// Or keep a configured service around
//	svc := redline.New(
//		redline.WithRemoveComments(true),
//		redline.WithLogger(logger),
//	)
//	review, err := svc.FinishReview(ctx, data)
package redline
