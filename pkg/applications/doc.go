// Package applications talks to the grants API: it fetches form definitions
// (over HTTP, from local fixtures, or through a redis cache) and saves
// application responses.
package applications
