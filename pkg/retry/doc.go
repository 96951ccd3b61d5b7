// Package retry runs a fallible operation a bounded number of times with a
// constant delay between attempts.
//
// There is no backoff, jitter or error classification: a network failure, a
// non-2xx status and an unparseable body are all retried identically. When
// every attempt fails the caller receives the last error as-is, so
// errors.Is / errors.As keep working on it.
//
//	page, err := retry.DoWithResult(func() (*douyin.Page, error) {
//		return client.FetchPage(ctx, secUserID, cursor)
//	}, &retry.Config{
//		MaxAttempts: 5,
//		Delay:       2 * time.Second,
//		Context:     ctx,
//		Logger:      log,
//	})
package retry
