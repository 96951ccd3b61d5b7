// Package douyin is a minimal client for the Douyin web API.
//
// It knows one endpoint, the creator post listing, and how to turn the
// identifier in a profile URL into the sec_user_id that endpoint expects.
// The client sends the browser-like query and header set the web app sends,
// treats any non-2xx status as an error and never retries; callers compose
// it with the retry package.
//
//	client := douyin.NewClient(&cfg.Douyin, log,
//		douyin.WithHeaderProvider(credentials))
//
//	page, err := client.FetchPage(ctx, secUserID, douyin.FirstCursor)
//	if err != nil {
//		return err
//	}
//	next := page.MaxCursor.String()
//
// Response fields are loosely typed upstream: has_more arrives as a boolean
// or as 0/1, cursors and ids as strings or numbers. Flag and Token normalize
// both shapes at decode time.
package douyin
