// Package crawler walks the Steam match sequence forward in pages and stores
// the matches that pass the filter pipeline.
//
// Accepted matches are buffered and flushed to the dataset store when the
// buffer reaches FlushEvery matches and once more on the final page. A crawl
// interrupted between flushes loses only the buffered matches.
package crawler
