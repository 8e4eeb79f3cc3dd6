// Package imagecache caches avatar and thumbnail bytes keyed by URL, using
// conditional GETs (If-None-Match / If-Modified-Since) to revalidate. A 304
// hands back the same Handle so callers can cheaply detect "unchanged" by
// identity. Clear drops everything; the app wires it to logout.
package imagecache
