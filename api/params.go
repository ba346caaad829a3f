package api

import (
	"strconv"
	"strings"

	"github.com/wallet-backend/wallet-backend/database/query"
	"github.com/wallet-backend/wallet-backend/utils"
)

// Untyped request parameters arrive as query-string text or decoded JSON;
// the helpers below coerce both shapes into the builder configurations.

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case int, int32, int64, float32, float64:
		n, err := utils.ConvertToInt64(t)
		return err == nil && n != 0
	}
	return false
}

func toInt64(v any, def int64) int64 {
	if v == nil {
		return def
	}
	n, err := utils.ConvertToInt64(v)
	if err != nil {
		return def
	}
	return n
}

func toStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		list := make([]string, 0, len(t))
		for _, item := range t {
			list = append(list, utils.ConvertToString(item))
		}
		return list
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		list := []string{}
		for _, item := range strings.Split(t, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		return list
	}
	return []string{utils.ConvertToString(v)}
}

func asJSON(v any) (utils.JSON, bool) {
	j, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	return j, true
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []utils.JSON:
		list := make([]any, 0, len(t))
		for _, item := range t {
			list = append(list, item)
		}
		return list
	}
	return nil
}

func filterFromJSON(j utils.JSON) query.WBFilter {
	f := query.WBFilter{
		Key:      utils.ConvertToString(j["key"]),
		Column:   utils.ConvertToString(j["column"]),
		Columns:  toStringList(j["columns"]),
		Compare:  utils.ConvertToString(j["compare"]),
		Relation: utils.ConvertToString(j["relation"]),
	}
	f.Percentage = int(toInt64(j["percentage"], 0))

	if rangeJSON, ok := asJSON(j["column_range"]); ok {
		f.ColumnRange = &query.WBColumnRange{
			Min: utils.ConvertToString(rangeJSON["min"]),
			Max: utils.ConvertToString(rangeJSON["max"]),
		}
	}

	value := j["value"]
	if rangeJSON, ok := asJSON(value); ok {
		if _, hasMin := rangeJSON["min"]; hasMin {
			f.Value = query.WBRange{Min: rangeJSON["min"], Max: rangeJSON["max"]}
			return f
		}
	}
	f.Value = value
	return f
}

func filterGroupFrom(v any) query.WBFilterGroup {
	group := query.WBFilterGroup{}
	if j, ok := asJSON(v); ok {
		return append(group, filterFromJSON(j))
	}
	for _, node := range asList(v) {
		if j, ok := asJSON(node); ok {
			group = append(group, filterFromJSON(j))
		}
	}
	return group
}

func filterGroupsFrom(v any) []query.WBFilterGroup {
	groups := []query.WBFilterGroup{}
	for _, item := range asList(v) {
		if group := filterGroupFrom(item); len(group) > 0 {
			groups = append(groups, group)
		}
	}
	return groups
}

func joinsFrom(v any) []query.WBJoin {
	joins := []query.WBJoin{}
	for _, item := range asList(v) {
		j, ok := asJSON(item)
		if !ok {
			continue
		}
		joins = append(joins, query.WBJoin{
			Table:   utils.ConvertToString(j["table"]),
			Type:    utils.ConvertToString(j["type"]),
			Filter:  filterGroupFrom(j["filter"]),
			Filters: filterGroupsFrom(j["filters"]),
		})
	}
	return joins
}

func ordersFrom(v any) []query.WBOrder {
	orders := []query.WBOrder{}
	for _, item := range asList(v) {
		if j, ok := asJSON(item); ok {
			orders = append(orders, query.WBOrder{
				Column:    utils.ConvertToString(j["column"]),
				Direction: utils.ConvertToString(j["direction"]),
			})
		}
	}
	return orders
}

func usingFrom(v any) []query.WBUsing {
	using := []query.WBUsing{}
	for _, item := range asList(v) {
		if j, ok := asJSON(item); ok {
			using = append(using, query.WBUsing{
				Table:     utils.ConvertToString(j["table"]),
				Key:       utils.ConvertToString(j["key"]),
				Reference: utils.ConvertToString(j["reference"]),
			})
		}
	}
	return using
}

func unaccentFrom(params utils.JSON, def bool) bool {
	if _, ok := params["unaccent"]; !ok {
		return def
	}
	return toBool(params["unaccent"])
}

func selectConfigFromParams(table string, params utils.JSON) query.WBSelectConfig {
	cfg := query.NewSelectConfig(table)
	cfg.Fields = toStringList(params["fields"])
	cfg.Joins = joinsFrom(params["joins"])
	cfg.PerPage = toInt64(params["per_page"], 100)
	cfg.Paged = toInt64(params["paged"], 1)
	if order := utils.ConvertToString(params["order"]); order != "" {
		cfg.Order = order
	}
	if raw, isString := params["order_by"].(string); isString {
		cfg.OrderByRaw = raw
	} else {
		cfg.OrderBy = ordersFrom(params["order_by"])
	}
	cfg.GroupBy = toStringList(params["group_by"])
	cfg.Filter = filterGroupFrom(params["filter"])
	cfg.Filters = filterGroupsFrom(params["filters"])
	cfg.Unaccent = unaccentFrom(params, cfg.Unaccent)
	cfg.ForAPI = true
	return cfg
}

func insertConfigFromParams(table string, params utils.JSON) query.WBInsertConfig {
	cfg := query.NewInsertConfig(table)
	cfg.Key = utils.ConvertToString(params["key"])
	if _, ok := params["update_duplicate_key"]; ok {
		cfg.UpdateDuplicateKey = toBool(params["update_duplicate_key"])
	}

	if item, ok := asJSON(params["item"]); ok {
		cfg.Item = item
	}
	if items, ok := asJSON(params["items"]); ok {
		cfg.Items.Columns = toStringList(items["columns"])
		for _, record := range asList(items["records"]) {
			if values := asList(record); values != nil {
				cfg.Items.Records = append(cfg.Items.Records, values)
			}
		}
	}
	return cfg
}

func updateConfigFromParams(table string, params utils.JSON) query.WBUpdateConfig {
	cfg := query.NewUpdateConfig(table)
	cfg.Key = utils.ConvertToString(params["key"])
	cfg.Using = usingFrom(params["using"])
	cfg.Filter = filterGroupFrom(params["filter"])
	cfg.Filters = filterGroupsFrom(params["filters"])
	cfg.Unaccent = unaccentFrom(params, cfg.Unaccent)

	if setValues, ok := asJSON(params["set_values"]); ok {
		cfg.SetValues = setValues
	}
	for _, item := range asList(params["sets"]) {
		if j, ok := asJSON(item); ok {
			cfg.Sets = append(cfg.Sets, query.WBSet{
				Set:    utils.ConvertToString(j["set"]),
				Value:  j["value"],
				Column: utils.ConvertToString(j["column"]),
			})
		}
	}
	return cfg
}

func deleteConfigFromParams(table string, params utils.JSON) query.WBDeleteConfig {
	cfg := query.NewDeleteConfig(table)
	cfg.Using = usingFrom(params["using"])
	cfg.Filter = filterGroupFrom(params["filter"])
	cfg.Filters = filterGroupsFrom(params["filters"])
	cfg.Unaccent = unaccentFrom(params, cfg.Unaccent)
	return cfg
}
