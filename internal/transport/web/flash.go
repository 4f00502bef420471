package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	flashCookieName    = "yc_flash"
	returnToCookieName = "yc_return_to"

	contextFlashKey = "pendingFlashes"
)

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice rendered on the next page and then discarded.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// AddFlash appends a notice to the flash cookie. Handlers always redirect
// after calling this, so the next request drains the queue at render time.
// The pending queue is carried on the context so notices added earlier in
// the same request are kept, not clobbered.
func AddFlash(c echo.Context, kind, message string) {
	queue, ok := c.Get(contextFlashKey).([]Flash)
	if !ok {
		queue = readFlashes(c)
	}
	queue = append(queue, Flash{Kind: kind, Message: message})
	c.Set(contextFlashKey, queue)
	writeFlashCookie(c, queue)
}

// PopFlashes drains and clears the flash queue. Called exactly once per
// response render, by the Renderer.
func PopFlashes(c echo.Context) []Flash {
	queue := readFlashes(c)
	if len(queue) > 0 {
		clearCookie(c, flashCookieName)
	}
	return queue
}

func readFlashes(c echo.Context) []Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var queue []Flash
	if err := json.Unmarshal(raw, &queue); err != nil {
		return nil
	}
	return queue
}

func writeFlashCookie(c echo.Context, queue []Flash) {
	raw, err := json.Marshal(queue)
	if err != nil {
		return
	}
	// Drop any flash cookie written earlier in this request so the response
	// carries exactly one, holding the whole queue.
	header := c.Response().Header()
	existing := header.Values(echo.HeaderSetCookie)
	header.Del(echo.HeaderSetCookie)
	for _, v := range existing {
		if !strings.HasPrefix(v, flashCookieName+"=") {
			header.Add(echo.HeaderSetCookie, v)
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
	})
}

// RememberReturnTo stores the URL an unauthenticated visitor was heading to,
// so a successful login can send them back there.
func RememberReturnTo(c echo.Context, target string) {
	c.SetCookie(&http.Cookie{
		Name:     returnToCookieName,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(target)),
		Path:     "/",
		HttpOnly: true,
	})
}

// PopReturnTo returns the remembered URL (or "") and clears it.
func PopReturnTo(c echo.Context) string {
	cookie, err := c.Cookie(returnToCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	clearCookie(c, returnToCookieName)
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	target := string(raw)
	// Only same-site paths are honored; anything absolute could bounce the
	// user off-site after login. A second slash or backslash would make the
	// Location header protocol-relative, which is just as off-site.
	if len(target) == 0 || target[0] != '/' {
		return ""
	}
	if len(target) > 1 && (target[1] == '/' || target[1] == '\\') {
		return ""
	}
	return target
}

func clearCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
