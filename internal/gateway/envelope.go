package gateway

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"crmadmin/internal/model"
	"crmadmin/internal/query"

	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// Keys probed, in order, when reading a list envelope. Gateway endpoints are
// not consistent about naming.
var (
	itemKeys  = []string{"data", "items", "results", "records"}
	totalKeys = []string{"total", "totalCount", "count", "totalItems"}
	pagesKeys = []string{"pages", "totalPages", "pageCount"}
	pageKeys  = []string{"page", "currentPage"}
	metaKeys  = []string{"meta", "pagination"}
)

// decodePage reads a list response. Accepted shapes include a bare array,
// {data|items: [...], total, pages}, {data: {items, total}} and a nested
// meta/pagination object. Missing counters are derived from the request.
func decodePage[T any](body []byte, q url.Values) (model.Page[T], error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return model.Page[T]{}, err
	}

	arr, container := findItems(v)
	if arr == nil {
		return model.Page[T]{}, errors.New("response has no item list")
	}

	var page model.Page[T]
	raw := arr.MarshalTo(nil)
	if err := json.Unmarshal(raw, &page.Items); err != nil {
		return model.Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}

	scopes := []*fastjson.Value{container, v}
	for _, mk := range metaKeys {
		if m := v.Get(mk); m != nil && m.Type() == fastjson.TypeObject {
			scopes = append(scopes, m)
		}
		if container != nil {
			if m := container.Get(mk); m != nil && m.Type() == fastjson.TypeObject {
				scopes = append(scopes, m)
			}
		}
	}

	page.Page = firstInt(scopes, pageKeys, intParam(q, query.KeyPage, 1))
	limit := intParam(q, query.KeyLimit, 0)
	total := firstInt(scopes, totalKeys, -1)
	pages := firstInt(scopes, pagesKeys, -1)
	switch {
	case total < 0 && pages < 0:
		page.Total, page.Pages = openEnded(page.Page, limit, len(page.Items))
	case pages < 0:
		page.Total, page.Pages = total, derivePages(total, limit, len(page.Items))
	case total < 0:
		page.Total, page.Pages = len(page.Items), pages
	default:
		page.Total, page.Pages = total, pages
	}
	return page, nil
}

// openEnded estimates counters for a response that carries none. A full
// page means another one may follow.
func openEnded(page, limit, items int) (total, pages int) {
	if limit <= 0 {
		return items, min(items, 1)
	}
	total = (page-1)*limit + items
	switch {
	case items == 0:
		pages = page - 1
	case items >= limit:
		pages = page + 1
	default:
		pages = page
	}
	return total, pages
}

func findItems(v *fastjson.Value) (arr, container *fastjson.Value) {
	if v.Type() == fastjson.TypeArray {
		return v, nil
	}
	if v.Type() != fastjson.TypeObject {
		return nil, nil
	}
	for _, key := range itemKeys {
		child := v.Get(key)
		if child == nil {
			continue
		}
		switch child.Type() {
		case fastjson.TypeArray:
			return child, v
		case fastjson.TypeObject:
			if inner, _ := findItems(child); inner != nil {
				return inner, child
			}
		}
	}
	return nil, nil
}

func firstInt(scopes []*fastjson.Value, keys []string, fallback int) int {
	for _, scope := range scopes {
		if scope == nil {
			continue
		}
		for _, key := range keys {
			child := scope.Get(key)
			if child == nil {
				continue
			}
			switch child.Type() {
			case fastjson.TypeNumber:
				return child.GetInt()
			case fastjson.TypeString:
				if n, err := strconv.Atoi(string(child.GetStringBytes())); err == nil {
					return n
				}
			}
		}
	}
	return fallback
}

func derivePages(total, limit, items int) int {
	if total <= 0 {
		return 0
	}
	if limit <= 0 {
		limit = items
	}
	if limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

func intParam(q url.Values, key string, fallback int) int {
	if q == nil {
		return fallback
	}
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// unwrapData returns the "data" member when body is an object whose only
// payload is that member, otherwise body unchanged.
func unwrapData(body []byte) []byte {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil || v.Type() != fastjson.TypeObject {
		return body
	}
	data := v.Get("data")
	if data == nil || data.Type() == fastjson.TypeNull {
		return body
	}
	obj := v.GetObject()
	extra := false
	obj.Visit(func(key []byte, _ *fastjson.Value) {
		switch string(key) {
		case "data", "success", "message", "status", "statusCode":
		default:
			extra = true
		}
	})
	if extra {
		return body
	}
	return data.MarshalTo(nil)
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(body []byte) string {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return strings.TrimSpace(truncate(string(body), 200))
	}
	for _, key := range []string{"message", "error", "detail"} {
		child := v.Get(key)
		if child == nil {
			continue
		}
		switch child.Type() {
		case fastjson.TypeString:
			return string(child.GetStringBytes())
		case fastjson.TypeArray:
			var parts []string
			for _, item := range child.GetArray() {
				if item.Type() == fastjson.TypeString {
					parts = append(parts, string(item.GetStringBytes()))
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		case fastjson.TypeObject:
			if msg := child.GetStringBytes("message"); len(msg) > 0 {
				return string(msg)
			}
		}
	}
	return ""
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}
