package douyin

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the default web origin
	BaseURL = "https://www.douyin.com"

	// PostEndpoint lists a creator's posts, newest first
	PostEndpoint = "/aweme/v1/web/aweme/post/"

	// DefaultPageSize is the number of posts requested per page
	DefaultPageSize = 20

	// FirstCursor starts pagination at the newest post
	FirstCursor = "0"
)

// fixedParams are sent with every listing request
var fixedParams = [][2]string{
	{"device_platform", "webapp"},
	{"aid", "6383"},
	{"channel", "channel_pc_web"},
	{"version_code", "170400"},
	{"version_name", "17.4.0"},
	{"cookie_enabled", "true"},
	{"screen_width", "1920"},
	{"screen_height", "1080"},
	{"browser_language", "en-US"},
	{"browser_platform", "Win32"},
	{"browser_name", "Chrome"},
	{"browser_version", "118.0.0.0"},
	{"browser_online", "true"},
	{"tzName", "America/Los_Angeles"},
	{"web_id", "7242155500523021835"},
}

// PostListParams returns the query for one page of a creator's posts
func PostListParams(secUserID, cursor string, count int) url.Values {
	if cursor == "" {
		cursor = FirstCursor
	}
	if count <= 0 {
		count = DefaultPageSize
	}

	params := url.Values{}
	for _, kv := range fixedParams {
		params.Set(kv[0], kv[1])
	}
	params.Set("sec_user_id", secUserID)
	params.Set("max_cursor", cursor)
	params.Set("cursor", cursor)
	params.Set("count", fmt.Sprintf("%d", count))
	return params
}

// GetPostListURL constructs the listing URL for one page
func GetPostListURL(baseURL, secUserID, cursor string, count int) string {
	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), PostEndpoint, PostListParams(secUserID, cursor, count).Encode())
}

// GetProfileURL returns the public profile page, used as the referer
func GetProfileURL(baseURL, secUserID string) string {
	return fmt.Sprintf("%s/user/%s", strings.TrimRight(baseURL, "/"), secUserID)
}
