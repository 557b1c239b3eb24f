package render

import "strings"

// InjectCSS adds css to page as a <style> element: before </head> when
// there is one, else right after the <body> tag, else at the very start.
func InjectCSS(page, css string) string {
	if css == "" {
		return page
	}
	block := "<style>" + strings.ReplaceAll(css, "</", `<\/`) + "</style>"
	lower := strings.ToLower(page)

	at := strings.Index(lower, "</head>")
	if at < 0 {
		if open := strings.Index(lower, "<body"); open >= 0 {
			if end := strings.IndexByte(page[open:], '>'); end >= 0 {
				at = open + end + 1
			}
		}
	}
	if at < 0 {
		return block + page
	}
	return page[:at] + block + page[at:]
}
