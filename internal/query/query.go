// Package query turns untrusted list parameters into parameterized GORM
// scopes. Every filterable and sortable field is declared up front in a Spec;
// values are always bound as parameters and only declared columns ever reach
// the SQL text.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// SortByParam names the request parameter selecting the sort field.
	SortByParam = "sortBy"
	// SortOrderParam names the request parameter selecting the direction.
	SortOrderParam = "sortOrder"

	likeEscape = '!'
)

var columnPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

// Field maps a request parameter to a (possibly table-qualified) column.
type Field struct {
	Param  string
	Column string
}

// Spec is the per-endpoint allow-list. Filters are matched as case-insensitive
// substrings. The first entry of Sorts is the default sort field.
type Spec struct {
	Filters []Field
	Sorts   []Field
}

// Params is the read side of the request parameters; url.Values satisfies it.
type Params interface {
	Get(key string) string
}

// Validate checks that the spec is usable: at least one sort field, unique
// parameter names and plain identifiers as columns.
func (s Spec) Validate() error {
	if len(s.Sorts) == 0 {
		return fmt.Errorf("query spec needs at least one sort field")
	}
	for _, group := range [][]Field{s.Filters, s.Sorts} {
		seen := make(map[string]struct{}, len(group))
		for _, f := range group {
			if f.Param == "" {
				return fmt.Errorf("query spec field with empty param")
			}
			if _, dup := seen[f.Param]; dup {
				return fmt.Errorf("query spec param %q declared twice", f.Param)
			}
			seen[f.Param] = struct{}{}
			if !columnPattern.MatchString(f.Column) {
				return fmt.Errorf("query spec column %q for %q is not a plain identifier", f.Column, f.Param)
			}
		}
	}
	return nil
}

// MustSpec panics when s is invalid. Intended for package-level declarations
// so a bad allow-list fails at startup.
func MustSpec(s Spec) Spec {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// Condition is one bound WHERE clause.
type Condition struct {
	SQL  string
	Args []interface{}
}

// Criteria is the resolved, safe form of a list request.
type Criteria struct {
	Conditions []Condition
	SortColumn string
	Desc       bool
}

// Build resolves request parameters against the spec. Absent or empty filter
// values add no condition. An unknown sortBy falls back to the first sort
// field and any sortOrder other than the literal "desc" means ascending.
func (s Spec) Build(p Params) Criteria {
	var c Criteria
	for _, f := range s.Filters {
		v := p.Get(f.Param)
		if v == "" {
			continue
		}
		c.Conditions = append(c.Conditions, Condition{
			SQL:  fmt.Sprintf("LOWER(%s) LIKE ? ESCAPE '%c'", f.Column, likeEscape),
			Args: []interface{}{"%" + escapeLike(strings.ToLower(v)) + "%"},
		})
	}

	c.SortColumn = s.Sorts[0].Column
	sortBy := p.Get(SortByParam)
	for _, f := range s.Sorts {
		if f.Param == sortBy {
			c.SortColumn = f.Column
			break
		}
	}
	c.Desc = p.Get(SortOrderParam) == "desc"
	return c
}

// Scope applies the criteria to a GORM query.
func (c Criteria) Scope(db *gorm.DB) *gorm.DB {
	for _, cond := range c.Conditions {
		db = db.Where(cond.SQL, cond.Args...)
	}
	return db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: c.SortColumn, Raw: true},
		Desc:   c.Desc,
	})
}

func escapeLike(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if r == '%' || r == '_' || r == likeEscape {
			b.WriteRune(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}
