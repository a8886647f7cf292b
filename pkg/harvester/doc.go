// Package harvester runs one match collection pass.
//
// A run resolves where the crawl starts and ends from the configured match ID
// selectors, then hands the sequence number range to the crawler:
//
//   - "latest" resumes from the stored dataset, starting at its greatest
//     sequence number minus the match duration margin
//   - auto (null) locates the first match of the current patch with the
//     boundary locator
//   - a literal match ID is looked up directly
//
// The end selector is either a literal match ID or the newest match. Both
// ends are padded by the margin so matches whose sequence number trails their
// ID are not missed; the ID range itself is enforced by the filter pipeline.
//
// Usage:
//
//	h, err := harvester.NewFromConfig(ctx, cfg, progress, log)
//	if err != nil {
//	    return err
//	}
//	summary, err := h.Run(ctx)
package harvester
