package postgres_adapter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/search"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
	// textDeferred is set when the text filter is left to the in-memory match.
	textDeferred bool
}

func newQueryBuilder(base ...string) *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: append([]string{}, base...),
		args:       make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// addArg registers a value and returns its placeholder, for conditions that reference it more than once.
func (qb *queryBuilder) addArg(arg interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) AddIntFilter(fieldName string, min *int, max *int) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

// AddTextFilter matches title or description, case-insensitively.
// ILIKE folds non-ASCII letters only as far as the database ctype allows, so such
// text is not filtered in SQL at all.
func (qb *queryBuilder) AddTextFilter(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if !isASCII(text) {
		qb.textDeferred = true
		return
	}
	p := qb.addArg("%" + escapeLike(text) + "%")
	qb.conditions = append(qb.conditions, fmt.Sprintf("(l.title ILIKE %s OR l.description ILIKE %s)", p, p))
}

// build returns the WHERE clause and the positional arguments.
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// nextPlaceholder is the placeholder for the first argument appended after build.
func (qb *queryBuilder) nextPlaceholder() string {
	return fmt.Sprintf("$%d", qb.argId)
}

// applySearchCriteria narrows the candidate set in SQL. The in-memory search
// re-applies every predicate, so a condition here may be looser than the
// search semantics but never stricter.
func applySearchCriteria(c domain.SearchCriteria) (string, []interface{}) {
	qb := newQueryBuilder("l.active = true")

	if c.ListingType != nil {
		qb.addCondition("%s = $%d", "l.listing_type", string(*c.ListingType))
	}
	if c.BuildingType != nil {
		qb.addCondition("%s = $%d", "l.building_type", string(*c.BuildingType))
	}
	if c.ListedBy != nil {
		qb.addCondition("%s = $%d", "COALESCE(u.account_type, 'normal')", string(c.ListedBy.AccountType()))
	}

	qb.AddFloatFilter("l.price", c.MinPrice, c.MaxPrice)
	qb.AddIntFilter("l.bedrooms", c.MinBedrooms, nil)
	qb.AddIntFilter("l.bathrooms", c.MinBathrooms, nil)
	qb.AddFloatFilter("l.area", c.MinArea, c.MaxArea)
	qb.AddTextFilter(c.Text)

	if c.Origin != nil {
		qb.conditions = append(qb.conditions, "l.latitude IS NOT NULL", "l.longitude IS NOT NULL")
		if cells := coverCells(*c.Origin, search.DefaultRadiusKm); len(cells) > 0 {
			patterns := make([]string, len(cells))
			for i, cell := range cells {
				patterns[i] = cell + "%"
			}
			qb.addCondition("%s LIKE ANY($%d)", "l.geohash", patterns)
		}
	}

	return qb.build()
}

// applyRecentQuery builds the home feed filter.
func applyRecentQuery(q domain.RecentQuery) *queryBuilder {
	qb := newQueryBuilder("l.active = true")
	if q.ListingType != nil {
		qb.addCondition("%s = $%d", "l.listing_type", string(*q.ListingType))
	}
	qb.AddTextFilter(q.Text)
	return qb
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
