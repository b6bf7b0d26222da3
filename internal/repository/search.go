package repository

import (
	"strconv"
	"strings"

	"github.com/Shivanand-hulikatti/concerts/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchQuery turns a filter into a SELECT over events. Every non-empty
// criterion adds one ANDed predicate; an empty filter selects all events.
func buildSearchQuery(f model.EventFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	contains := func(column, value string) {
		if value == "" {
			return
		}
		where = append(where, column+` LIKE `+arg("%"+likeEscaper.Replace(value)+"%")+` ESCAPE '\'`)
	}

	contains("title", f.Title)
	contains("artist", f.Artist)
	contains("genre", f.Genre)
	if f.After != nil {
		where = append(where, "starts_at >= "+arg(*f.After))
	}
	if f.Before != nil {
		where = append(where, "starts_at <= "+arg(*f.Before))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}

	var b strings.Builder
	b.WriteString("SELECT " + eventColumns + " FROM events")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY starts_at ASC, id ASC")
	if f.Limit > 0 {
		b.WriteString(" LIMIT " + arg(f.Limit))
	}
	return b.String(), args
}
