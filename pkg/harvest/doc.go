// Package harvest drives cursor pagination over a creator's post listing.
//
// A run has two states. While fetching, the harvester requests the page at
// the current cursor through the retry policy, extracts and filters its
// items, appends them in API order and pauses for the page delay before the
// next request. It is done once the response says there is nothing more, or
// the optional page cap is hit. A page that fails every attempt aborts the
// whole run.
//
//	h := harvest.New(client, cfg, log,
//		harvest.WithStatus(func(s harvest.Status) { fmt.Println(s.Message) }),
//		harvest.WithRecorder(collector),
//	)
//	records, err := h.Harvest(ctx, secUserID)
//
// Pages are strictly sequential: the cursor for page N+1 is only known once
// page N has been read.
package harvest
