package util

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Page 列表查询的分页与排序参数
type Page struct {
	Page  int
	Limit int
	// Sort 形如 "order" 或 "-createdAt"
	Sort string
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Normalize 修正非法的分页参数
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// OrderClause 把 sort 参数映射为白名单内的列，未知字段回退到 fallback
func (p Page) OrderClause(columns map[string]string, fallback string) string {
	key := strings.TrimSpace(p.Sort)
	desc := strings.HasPrefix(key, "-")
	key = strings.TrimPrefix(key, "-")

	col, ok := columns[key]
	if !ok {
		return fallback
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}

func ParsePage(c *gin.Context, defaultSort string) Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	return Page{
		Page:  page,
		Limit: limit,
		Sort:  c.DefaultQuery("sort", defaultSort),
	}.Normalize()
}

func NewPageResponse(list interface{}, total int64, p Page) PageResponse {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return PageResponse{
		List:  list,
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
		Pages: pages,
	}
}
