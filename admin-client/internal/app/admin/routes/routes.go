// Package routes строит пути страниц админки и API коллекций.
package routes

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// List путь страницы списка ресурса, resource - products или categories
func List(resource string) string {
	return "/" + strings.Trim(resource, "/")
}

// Create путь страницы создания
func Create(resource string) string {
	return List(resource) + "/create"
}

// Show путь страницы просмотра, совпадает с IRI ресурса
func Show(iri string) string {
	return pathOf(iri)
}

// Edit путь страницы редактирования
func Edit(iri string) string {
	return pathOf(iri) + "/edit"
}

// Page путь нумерованной страницы списка
func Page(resource string, n int) string {
	if n < 1 {
		n = 1
	}
	return fmt.Sprintf("%s/page/%d", List(resource), n)
}

// Collection путь коллекции в API с параметрами пагинации
func Collection(resource string, page, itemsPerPage int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("%s?page=%d&itemsPerPage=%d", List(resource), page, itemsPerPage)
}

var pageParam = regexp.MustCompile(`[?&]page=(\d+)`)

// ParsePage извлекает номер страницы из ссылки API, например из view.next
// Ссылка на другой ресурс или без page дает 1
func ParsePage(resource string, path string) int {
	if !strings.HasPrefix(pathOf(path), List(resource)) {
		return 1
	}

	m := pageParam.FindStringSubmatch(path)
	if m == nil {
		return 1
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// IDFromIRI возвращает последний сегмент IRI
func IDFromIRI(iri string) string {
	p := strings.TrimSuffix(pathOf(iri), "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// pathOf отрезает схему, хост и query у абсолютного IRI
func pathOf(iri string) string {
	u, err := url.Parse(iri)
	if err != nil {
		return iri
	}
	return u.Path
}
