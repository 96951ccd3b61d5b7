package metadata

import (
	"strings"
	"time"

	"dyscraper/pkg/douyin"
)

// isoMillis matches the millisecond UTC form browsers emit for dates
const isoMillis = "2006-01-02T15:04:05.000Z"

// Record is the normalized metadata kept for one video
type Record struct {
	ID              string `json:"id" yaml:"id"`
	Description     string `json:"desc" yaml:"desc"`
	Title           string `json:"title" yaml:"title"`
	CreatedAt       string `json:"createTime" yaml:"createTime"`
	VideoURL        string `json:"videoUrl" yaml:"videoUrl"`
	AudioURL        string `json:"audioUrl" yaml:"audioUrl"`
	CoverURL        string `json:"coverUrl" yaml:"coverUrl"`
	DynamicCoverURL string `json:"dynamicCoverUrl" yaml:"dynamicCoverUrl"`
}

// Playable reports whether the record has a video URL worth exporting
func (r *Record) Playable() bool {
	return r != nil && r.VideoURL != ""
}

// Extract normalizes a raw post. It returns false only for a nil item;
// every other input yields a record, possibly without a video URL.
func Extract(item *douyin.Item) (*Record, bool) {
	if item == nil {
		return nil, false
	}

	record := &Record{
		ID:          item.AwemeID.String(),
		Description: item.Desc,
		Title:       item.Desc,
		CreatedAt:   formatCreateTime(item.CreateTime),
	}

	if v := item.Video; v != nil {
		record.VideoURL = v.PlayAddr.First()
		if record.VideoURL == "" {
			record.VideoURL = v.DownloadAddr.First()
		}
		record.CoverURL = v.Cover.First()
		record.DynamicCoverURL = v.DynamicCover.First()
	}
	// Only the video URL is upgraded; covers and audio are passed through.
	record.VideoURL = upgradeScheme(record.VideoURL)

	if item.Music != nil {
		record.AudioURL = item.Music.PlayURL.First()
	}
	if record.CoverURL == "" {
		record.CoverURL = item.Cover.First()
	}
	if record.DynamicCoverURL == "" {
		record.DynamicCoverURL = item.DynamicCover.First()
	}

	return record, true
}

// FilterPlayable extracts every item in order and keeps the playable ones.
// dropped counts items that were nil or had no video URL.
func FilterPlayable(items []*douyin.Item) (records []Record, dropped int) {
	records = make([]Record, 0, len(items))
	for _, item := range items {
		record, ok := Extract(item)
		if !ok || !record.Playable() {
			dropped++
			continue
		}
		records = append(records, *record)
	}
	return records, dropped
}

// VideoURLs returns the video URL of every record, in order
func VideoURLs(records []Record) []string {
	urls := make([]string, len(records))
	for i, r := range records {
		urls[i] = r.VideoURL
	}
	return urls
}

// ShortDescription returns a single-line description truncated to maxLength runes
func (r *Record) ShortDescription(maxLength int) string {
	desc := strings.Join(strings.Fields(r.Description), " ")
	runes := []rune(desc)
	if maxLength <= 3 || len(runes) <= maxLength {
		return desc
	}
	return string(runes[:maxLength-3]) + "..."
}

func formatCreateTime(e douyin.Epoch) string {
	if e == 0 {
		return ""
	}
	return time.Unix(int64(e), 0).UTC().Format(isoMillis)
}

func upgradeScheme(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
