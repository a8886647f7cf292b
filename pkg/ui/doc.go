// Package ui provides terminal output for the matchharvest commands: styled
// messages, summary panels and the crawl progress line.
//
// Messages go to standard output except errors, which go to standard error
// and are shown even in quiet mode.
package ui
