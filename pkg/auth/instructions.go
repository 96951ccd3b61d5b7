package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowCookieExtractionGuide writes step-by-step instructions for copying the
// Douyin session cookie out of a browser
func ShowCookieExtractionGuide(w io.Writer) {
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "DOUYIN COOKIE EXTRACTION GUIDE")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The post listing API answers reliably only to a logged-in browser session.")
	fmt.Fprintln(w, "Copy the Cookie header your browser sends to douyin.com:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Open https://www.douyin.com and log in")
	fmt.Fprintln(w, "STEP 2: Open Developer Tools (F12, or Cmd+Option+I on Mac)")
	fmt.Fprintln(w, "STEP 3: Open the Network tab and refresh the page")
	fmt.Fprintln(w, "STEP 4: Click any request to www.douyin.com/aweme/v1/web/")
	fmt.Fprintln(w, "STEP 5: Under Request Headers, copy the whole value of 'Cookie:'")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TIPS:")
	fmt.Fprintln(w, "   - Copy the ENTIRE value, it is one long line of name=value pairs")
	fmt.Fprintln(w, "   - Also copy 'User-Agent:' if you want requests to match your browser")
	fmt.Fprintln(w, "   - Sessions expire; run 'dyscraper auth login' again when requests start failing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SECURITY WARNING:")
	fmt.Fprintln(w, "   The cookie grants full access to your account. Never share it.")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// ShowQuickExtractGuide writes a condensed version for experienced users
func ShowQuickExtractGuide(w io.Writer) {
	fmt.Fprintln(w, "\nQuick Guide: F12 -> Network -> Refresh -> any douyin.com request -> Headers -> Cookie")
	fmt.Fprintln(w, "   Type 'help' for detailed instructions")
}
