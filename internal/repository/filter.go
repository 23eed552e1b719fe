package repository

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	"wellnesshub/internal/query"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applyClauses adds the filter predicates to db. Field names come from model constants,
// never from request input.
func applyClauses(db *gorm.DB, f query.Filter) *gorm.DB {
	for _, c := range f.Clauses {
		switch c.Op {
		case query.OpSearch:
			pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Term)) + "%"
			parts := make([]string, len(c.Fields))
			args := make([]interface{}, len(c.Fields))
			for i, field := range c.Fields {
				parts[i] = "LOWER(" + quote(field) + ") LIKE ?"
				args[i] = pattern
			}
			db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
		case query.OpEqual:
			db = db.Where(quote(c.Field)+" = ?", c.Value)
		case query.OpNotEqual:
			db = db.Where(quote(c.Field)+" <> ?", c.Value)
		case query.OpIn:
			db = db.Where(quote(c.Field)+" IN ?", c.Values)
		case query.OpContainsAny:
			payload, err := json.Marshal(c.Values)
			if err != nil {
				_ = db.AddError(err)
				continue
			}
			db = db.Where("JSON_OVERLAPS("+quote(c.Field)+", ?)", string(payload))
		case query.OpAtMost:
			db = db.Where(quote(c.Field)+" <= ?", c.Value)
		case query.OpDateRange:
			if c.From != nil {
				db = db.Where(quote(c.Field)+" >= ?", *c.From)
			}
			if c.Until != nil {
				db = db.Where(quote(c.Field)+" < ?", *c.Until)
			}
		}
	}
	return db
}

// applyWindow adds ordering, offset and limit.
func applyWindow(db *gorm.DB, f query.Filter) *gorm.DB {
	for _, s := range f.Sort {
		order := quote(s.Field) + " ASC"
		if s.Desc {
			order = quote(s.Field) + " DESC"
		}
		db = db.Order(order)
	}
	if f.Window.Limit > 0 {
		db = db.Offset(f.Window.Skip).Limit(f.Window.Limit)
	}
	return db
}

// list runs the count and page queries for model and fills dest.
func list(db *gorm.DB, model interface{}, f query.Filter, dest interface{}) (int64, error) {
	var total int64
	filtered := applyClauses(db.Model(model), f)
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if err := applyWindow(filtered.Session(&gorm.Session{}), f).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func quote(field string) string {
	return "`" + strings.ReplaceAll(field, "`", "") + "`"
}
