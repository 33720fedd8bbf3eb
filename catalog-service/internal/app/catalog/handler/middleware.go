package handler

import (
	"net/http"
	"net/url"
	"slices"

	"github.com/gin-gonic/gin"
)

// UpdatesPath путь live update канала
const UpdatesPath = "/.well-known/updates"

// UpdatesLinkMiddleware объявляет live update канал в каждом ответе
// Клиент находит hub по заголовку Link с rel="updates"
func UpdatesLinkMiddleware() gin.HandlerFunc {
	link := "<" + UpdatesPath + `>; rel="updates"`
	return func(c *gin.Context) {
		c.Header("Link", link)
		c.Next()
	}
}

// originChecker проверяет Origin при upgrade websocket
// Пустой список или "*" разрешает любой источник
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Не браузерный клиент, например CLI админки
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(allowed, u.Scheme+"://"+u.Host)
	}
}
