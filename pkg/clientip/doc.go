// Package clientip extracts the originating client's IP address from an
// *http.Request behind one or more reverse proxies.
//
// The resolved address feeds the hashed match-key payloads sent to
// Conversions APIs, so it must come from request metadata rather than the
// client-supplied JSON body (anti-spoofing). Headers are examined in
// descending priority until the first valid IP is found:
//
//  1. X-Forwarded-For — comma-separated list, first valid hop wins
//  2. X-Real-IP       — set by reverse proxies such as Nginx
//  3. RemoteAddr      — TCP peer address as a fallback
//
// GetIP never returns an error; if no valid address is found it returns
// the empty string and the caller decides how to proceed.
package clientip
