package record

import (
	"encoding/json"
	"strconv"
	"strings"

	"go-admin/pkg/criteria"

	"github.com/gofiber/fiber/v2"
)

// parseListQuery reads skip, limit, order_by, where and pks from the query string.
// Malformed numbers are rejected rather than silently defaulted.
func parseListQuery(c *fiber.Ctx) (ListQuery, error) {
	var q ListQuery

	if raw := c.Query("skip"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, &criteria.ValidationError{Field: "skip", Reason: "must be an integer"}
		}
		q.Skip = n
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return q, &criteria.ValidationError{Field: "limit", Reason: "must be an integer"}
		}
		q.Limit = &n
	}

	var values []string
	for _, v := range c.Context().QueryArgs().PeekMulti("order_by") {
		values = append(values, string(v))
	}
	orderBy, err := parseOrderByParam(values)
	if err != nil {
		return q, err
	}
	q.OrderBy = orderBy
	q.Where = c.Query("where")

	for _, v := range c.Context().QueryArgs().PeekMulti("pks") {
		if pk := strings.TrimSpace(string(v)); pk != "" {
			q.PKs = append(q.PKs, pk)
		}
	}
	return q, nil
}

// parseOrderByParam accepts a JSON list (order_by=["views desc"]), repeated
// parameters, or a comma separated list.
func parseOrderByParam(values []string) ([]string, error) {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err != nil {
				return nil, &criteria.ValidationError{Field: "order_by", Reason: "must be a list of strings"}
			}
			out = append(out, list...)
			continue
		}
		for _, tok := range strings.Split(v, ",") {
			if strings.TrimSpace(tok) != "" {
				out = append(out, tok)
			}
		}
	}
	return out, nil
}
