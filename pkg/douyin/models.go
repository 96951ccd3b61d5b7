package douyin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Page is one response from the creator post listing endpoint
type Page struct {
	StatusCode int     `json:"status_code"`
	Items      []*Item `json:"aweme_list"`
	HasMore    Flag    `json:"has_more"`
	MaxCursor  Token   `json:"max_cursor"`
}

// Item is a single raw post. Any nested object may be missing.
type Item struct {
	AwemeID      Token    `json:"aweme_id"`
	Desc         string   `json:"desc"`
	CreateTime   Epoch    `json:"create_time"`
	Video        *Video   `json:"video"`
	Music        *Music   `json:"music"`
	Cover        *URLList `json:"cover"`
	DynamicCover *URLList `json:"dynamic_cover"`
}

// Video holds stream and thumbnail candidates for a post
type Video struct {
	PlayAddr     *URLList `json:"play_addr"`
	DownloadAddr *URLList `json:"download_addr"`
	Cover        *URLList `json:"cover"`
	DynamicCover *URLList `json:"dynamic_cover"`
}

// Music holds the audio track of a post
type Music struct {
	PlayURL *URLList `json:"play_url"`
}

// URLList is an ordered set of mirrors for one asset
type URLList struct {
	URLList []string `json:"url_list"`
}

// UnmarshalJSON tolerates a malformed asset: anything other than an object
// with a string url_list decodes to an empty list instead of failing the page.
func (u *URLList) UnmarshalJSON(data []byte) error {
	*u = URLList{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	type plain URLList
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return nil
	}
	*u = URLList(p)
	return nil
}

// First returns the authoritative mirror, or "" when there is none
func (u *URLList) First() string {
	if u == nil || len(u.URLList) == 0 {
		return ""
	}
	return u.URLList[0]
}

// Flag decodes a continuation flag sent either as a boolean or as an
// integer where only 1 means true.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "":
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("has_more: unsupported value %s", data)
	}
	v, err := n.Float64()
	if err != nil {
		return fmt.Errorf("has_more: %w", err)
	}
	*f = v == 1
	return nil
}

// Token is an opaque identifier the API sends as a JSON string or number
type Token string

func (t *Token) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Token(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("unsupported token %s", data)
	}
	*t = Token(n.String())
	return nil
}

func (t Token) String() string {
	return string(t)
}

// Epoch is a creation time in seconds since the Unix epoch. Zero means absent.
type Epoch int64

func (e *Epoch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*e = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*e = 0
			return nil
		}
		data = []byte(s)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("create_time: %w", err)
	}
	*e = Epoch(n)
	return nil
}
