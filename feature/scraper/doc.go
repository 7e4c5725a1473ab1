// Package scraper contains the browser-driven source adapters: one per theater
// chain and one for the streaming catalog's expiring list.
//
// Browser automation sits behind the Browser and Page interfaces. The
// production implementation drives headless chrome with chromedp; tests use
// in-package fakes. Content is captured as rendered HTML and parsed with
// goquery, so selectors are applied to a stable snapshot rather than to live
// nodes.
//
// # Reveal-more
//
// Listings that disclose rows only after repeated clicks are read with
// RevealAll. The loop ends when the control stops being clickable, when two
// consecutive captures are byte-identical, or when the total-duration or
// click cap is reached. A stale element retries the same click.
//
// # Retries
//
// Each page read is one attempt under the adapter's retry policy. Exhausting
// it yields a source.FetchError.
package scraper
