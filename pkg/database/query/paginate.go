package query

import "strconv"

// PaginateQuery appends the cursor, ordering and limit clauses to a query
// whose conditions are bracketed, binding them after the existing args:
//
//	"SELECT * FROM t WHERE (payer = $1)"
//	> "SELECT * FROM t WHERE (payer = $1) AND id > $2 ORDER BY id ASC LIMIT $3"
func PaginateQuery(query string, args []interface{}, cursor Cursor, limit uint64, direction Ordering) (string, []interface{}) {
	if len(cursor) > 0 {
		comparison := " AND id > $"
		if direction == Descending {
			comparison = " AND id < $"
		}

		args = append(args, cursor.ToUint64())
		query += comparison + strconv.Itoa(len(args))
	}

	if direction == Descending {
		query += " ORDER BY id DESC"
	} else {
		query += " ORDER BY id ASC"
	}

	if limit > 0 {
		args = append(args, limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}

	return query, args
}
